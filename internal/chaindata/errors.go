package chaindata

import (
	"errors"
	"net"
	"syscall"
)

var (
	// ErrNotFound is returned when the data service answers 404. It is an
	// expected outcome, not a failure of the service.
	ErrNotFound = errors.New("not found")
	// ErrTransportUnavailable is returned when the data service cannot be reached at all.
	ErrTransportUnavailable = errors.New("data service unavailable")
)

func isUnavailable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
