package transport

import (
	"context"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/resolver"
	"github.com/goodnatureofminers/chainspend/internal/utxo"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Prober reports whether the blockchain data service answers.
	Prober interface {
		Online(ctx context.Context) bool
	}

	Resolver interface {
		Resolve(ctx context.Context, id model.Identifier, opts ...resolver.Option) (*resolver.Resolution, error)
		Block(ctx context.Context, id model.Identifier) (*model.Block, error)
		LatestHeight(ctx context.Context) (uint64, error)
	}

	Balances interface {
		Balance(ctx context.Context, address string) (model.Balance, error)
		Strategy(name string) (utxo.Strategy, error)
	}

	Broadcaster interface {
		Broadcast(ctx context.Context, rawTxHex string) (*model.BroadcastResult, error)
	}
)
