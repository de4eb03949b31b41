package chaindata

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// RawTxSender is the subset of the btcd rpc client used for broadcasting.
	RawTxSender interface {
		SendRawTransaction(tx *wire.MsgTx, allowHighFees bool) (*chainhash.Hash, error)
	}

	// Metrics records metrics for data service and node calls.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

type nopMetrics struct{}

func (nopMetrics) Observe(string, error, time.Time) {}
