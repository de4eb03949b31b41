package resolver

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

var (
	ErrInvalidAddress         = model.ErrInvalidAddress
	ErrNoBlockAtHeight        = errors.New("no block with this height")
	ErrNotBlockIdentifier     = errors.New("identifier is neither a block height nor a block id")
	ErrUnrecognizedIdentifier = errors.New("unrecognized identifier")
)

// UnrecognizedIdentifierError carries the value that could not be classified.
type UnrecognizedIdentifierError struct {
	Value string
	Type  string
}

func (e *UnrecognizedIdentifierError) Error() string {
	return fmt.Sprintf("unrecognized identifier %q of type %s", e.Value, e.Type)
}

func (e *UnrecognizedIdentifierError) Is(target error) bool {
	return target == ErrUnrecognizedIdentifier
}
