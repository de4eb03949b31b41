package utxo

import (
	"context"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// DataClient serves address summaries and the service's own unspent output index.
	DataClient interface {
		Address(ctx context.Context, address string) (*model.Address, error)
		UnspentOutputs(ctx context.Context, address string) ([]model.UnspentOutput, error)
	}

	// HistorySource returns the full transaction history of an address.
	HistorySource interface {
		AddressHistory(ctx context.Context, address string) ([]model.Transaction, error)
	}

	// AddressValidator checks address syntax for the configured network.
	AddressValidator interface {
		ValidateAddress(address string) bool
	}

	// Strategy lists the unspent outputs of an address.
	Strategy interface {
		Name() string
		Unspent(ctx context.Context, address string) ([]model.UnspentOutput, error)
	}
)
