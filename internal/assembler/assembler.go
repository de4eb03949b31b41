// Package assembler builds signed transactions from previous outputs, keys and recipients.
package assembler

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/clock"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"go.uber.org/zap"
)

const (
	defaultSettleDelay = 2 * time.Second
	defaultWorkers     = 4
)

const (
	variantTransfer             = "transfer"
	variantGeneral              = "general"
	variantCashout              = "cashout"
	variantSingleCashout        = "single_cashout"
	variantCashoutOffline       = "cashout_offline"
	variantSingleCashoutOffline = "single_cashout_offline"
)

// Config controls the assembler. Zero values fall back to defaults; a negative SettleDelay disables the settle check.
type Config struct {
	SettleDelay time.Duration
	Workers     int
}

type Assembler struct {
	txs     TransactionSource
	unspent UnspentSource
	keys    KeyProvider
	metrics Metrics
	logger  *zap.Logger
	sleep   clock.SleepFunc

	settleDelay time.Duration
	workers     int
}

func New(
	cfg Config,
	txs TransactionSource,
	unspent UnspentSource,
	keyProvider KeyProvider,
	metrics Metrics,
	logger *zap.Logger,
) *Assembler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}

	return &Assembler{
		txs:         txs,
		unspent:     unspent,
		keys:        keyProvider,
		metrics:     metrics,
		logger:      logger.Named("assembler"),
		sleep:       clock.SleepWithContext,
		settleDelay: cfg.SettleDelay,
		workers:     cfg.Workers,
	}
}

// matchOutput picks the output of prev that pays address. An explicit index must be one of the candidates.
func matchOutput(prev *model.Transaction, address string, index *uint32) (uint32, error) {
	candidates := prev.OutputsPaying(address)
	switch {
	case len(candidates) == 0:
		return 0, fmt.Errorf("%w: tx %s, address %s", ErrNoMatchingOutput, prev.Hash, address)
	case index != nil:
		if !slices.Contains(candidates, *index) {
			return 0, fmt.Errorf("%w: tx %s output %d, address %s", ErrOutputMismatch, prev.Hash, *index, address)
		}
		return *index, nil
	case len(candidates) > 1:
		return 0, fmt.Errorf("%w: tx %s outputs %v", ErrAmbiguousOutput, prev.Hash, candidates)
	default:
		return candidates[0], nil
	}
}

func (a *Assembler) validateRecipient(address string) error {
	if !a.keys.ValidateAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

func (a *Assembler) deriveKey(secret string) (*keys.SigningKey, error) {
	key, err := a.keys.DeriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func previousTxError(txid string, err error) error {
	if errors.Is(err, chaindata.ErrNotFound) {
		return fmt.Errorf("%w %s: %w", ErrPreviousTxNotFound, txid, err)
	}
	return fmt.Errorf("fetch previous tx %s: %w", txid, err)
}

func (a *Assembler) build(variant string, inputs []keys.InputSpec, outputs []keys.OutputSpec) (*keys.RawTransaction, error) {
	raw, err := a.keys.BuildTransaction(inputs, outputs)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	summaries := raw.Outputs()
	a.logger.Info("transaction built",
		zap.String("variant", variant),
		zap.String("txid", raw.TxID()),
		zap.Int("inputs", raw.InputCount()),
		zap.Int("outputs", len(summaries)),
		zap.Int64("fee", int64(raw.Fee())),
	)
	for _, idx := range raw.DustOutputs() {
		out := summaries[idx]
		a.logger.Warn("output below dust threshold",
			zap.String("txid", raw.TxID()),
			zap.Uint32("index", idx),
			zap.Int64("amount", int64(out.Amount)),
			zap.Strings("addresses", out.Addresses),
		)
	}
	return raw, nil
}

func (a *Assembler) observe(variant string, started time.Time, raw *keys.RawTransaction, err error) {
	inputs := 0
	if raw != nil {
		inputs = raw.InputCount()
	}
	a.metrics.ObserveBuild(variant, err, inputs, started)
}

func checkAmounts(amounts ...btcutil.Amount) error {
	for _, amount := range amounts {
		if amount < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
		}
	}
	return nil
}
