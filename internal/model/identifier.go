package model

import (
	"strconv"
)

// IdentifierKind is the syntactic class of a caller supplied identifier.
type IdentifierKind int

const (
	KindUnknown IdentifierKind = iota
	KindLatest
	KindAddress
	// KindHash is either a transaction id or a block id; which one is only known after resolution.
	KindHash
	KindHeight
)

const (
	hashLength       = 64
	minAddressLength = 26
	maxAddressLength = 35
)

func (k IdentifierKind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindAddress:
		return "address"
	case KindHash:
		return "hash"
	case KindHeight:
		return "height"
	default:
		return "unknown"
	}
}

// Identifier is an address, a tx/block hash, a block height or the latest block.
type Identifier struct {
	Kind   IdentifierKind
	Value  string
	Height uint64
	// Type is the Go-level type the value came from, kept for diagnostics.
	Type string
}

// Latest denotes the absent identifier.
func Latest() Identifier {
	return Identifier{Kind: KindLatest, Type: "nil"}
}

// Height builds a block height identifier.
func Height(h uint64) Identifier {
	return Identifier{Kind: KindHeight, Value: strconv.FormatUint(h, 10), Height: h, Type: "uint64"}
}

// AddressID builds an address identifier without validating it.
func AddressID(a string) Identifier {
	return Identifier{Kind: KindAddress, Value: a, Type: "string"}
}

// Hash builds a transaction-or-block hash identifier.
func Hash(h string) Identifier {
	return Identifier{Kind: KindHash, Value: h, Type: "string"}
}

// HeightFromInt classifies a signed integer; negative values are unknown.
func HeightFromInt(h int64) Identifier {
	if h < 0 {
		return Identifier{Kind: KindUnknown, Value: strconv.FormatInt(h, 10), Type: "int64"}
	}
	id := Height(uint64(h))
	id.Type = "int64"
	return id
}

// ClassifyString classifies a textual identifier purely by its shape.
func ClassifyString(s string) Identifier {
	switch {
	case s == "":
		return Latest()
	case len(s) == hashLength && isHex(s):
		return Identifier{Kind: KindHash, Value: s, Type: "string"}
	case isDigits(s) && (len(s) < minAddressLength || len(s) > maxAddressLength):
		h, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Identifier{Kind: KindUnknown, Value: s, Type: "string"}
		}
		id := Height(h)
		id.Type = "string"
		return id
	case len(s) >= minAddressLength && len(s) <= maxAddressLength:
		return Identifier{Kind: KindAddress, Value: s, Type: "string"}
	default:
		return Identifier{Kind: KindUnknown, Value: s, Type: "string"}
	}
}

// String returns the textual form used in request paths and diagnostics.
func (id Identifier) String() string {
	if id.Kind == KindLatest {
		return "latest"
	}
	return id.Value
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
