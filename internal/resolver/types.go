package resolver

import (
	"context"

	"github.com/goodnatureofminers/chainspend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// DataClient is the part of the blockchain data service the resolver reads from.
	DataClient interface {
		AddressTransactions(ctx context.Context, address string) (*model.AddressTransactions, error)
		Transaction(ctx context.Context, txid string) (*model.Transaction, error)
		Block(ctx context.Context, ref string) (*model.Block, error)
		BlockTransactions(ctx context.Context, ref string) (*model.BlockTransactions, error)
	}

	// AddressValidator checks address syntax for the configured network.
	AddressValidator interface {
		ValidateAddress(address string) bool
	}
)
