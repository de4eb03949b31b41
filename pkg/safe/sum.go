package safe

import (
	"fmt"
	"math"
)

// AddInt64 returns a+b or an error when the sum leaves the int64 range.
func AddInt64[T ~int64](a, b T) (T, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("sum of %d and %d overflows int64", a, b)
	}
	return a + b, nil
}

// SumInt64 adds all values with overflow checks.
func SumInt64[T ~int64](values ...T) (T, error) {
	var total T
	for _, v := range values {
		next, err := AddInt64(total, v)
		if err != nil {
			return 0, err
		}
		total = next
	}
	return total, nil
}
