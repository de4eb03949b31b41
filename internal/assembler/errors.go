package assembler

import (
	"errors"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

var (
	ErrNoMatchingOutput   = errors.New("previous transaction has no output paying the key address")
	ErrAmbiguousOutput    = errors.New("previous transaction pays the key address more than once, output index required")
	ErrOutputMismatch     = errors.New("output index does not pay the key address")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrNoUtxos            = errors.New("no unspent outputs to spend")
	ErrNoInputs           = errors.New("no inputs")
	ErrNoRecipients       = errors.New("no recipients")
	ErrInvalidAddress     = model.ErrInvalidAddress
	ErrInvalidMetadata    = errors.New("metadata must be hex encoded")
	ErrPreviousTxNotFound = errors.New("previous transaction not found")
	ErrSnapshotChanged    = errors.New("unspent outputs changed while settling")
)
