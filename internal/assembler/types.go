package assembler

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// TransactionSource fetches previous transactions by id.
	TransactionSource interface {
		Transaction(ctx context.Context, txid string) (*model.Transaction, error)
	}

	// UnspentSource lists the spendable outputs of an address.
	UnspentSource interface {
		Name() string
		Unspent(ctx context.Context, address string) ([]model.UnspentOutput, error)
	}

	// KeyProvider derives keys, validates addresses and signs transactions.
	KeyProvider interface {
		DeriveKey(secret string) (*keys.SigningKey, error)
		ValidateAddress(address string) bool
		BuildTransaction(inputs []keys.InputSpec, outputs []keys.OutputSpec) (*keys.RawTransaction, error)
	}

	// Metrics records transaction build outcomes.
	Metrics interface {
		ObserveBuild(variant string, err error, inputs int, started time.Time)
	}
)

type nopMetrics struct{}

func (nopMetrics) ObserveBuild(string, error, int, time.Time) {}
