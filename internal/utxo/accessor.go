// Package utxo reads balances and unspent outputs of addresses.
package utxo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/resolver"
	"go.uber.org/zap"
)

const (
	StrategySimulated     = "simulated"
	StrategyAuthoritative = "authoritative"
)

var ErrUnknownStrategy = errors.New("unknown unspent output strategy")

type Accessor struct {
	client    DataClient
	history   HistorySource
	validator AddressValidator
	logger    *zap.Logger
}

func NewAccessor(client DataClient, history HistorySource, validator AddressValidator, logger *zap.Logger) *Accessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor{
		client:    client,
		history:   history,
		validator: validator,
		logger:    logger.Named("utxo"),
	}
}

// Balance returns the remote confirmed and unconfirmed balance. Unknown addresses have zero balance.
func (a *Accessor) Balance(ctx context.Context, address string) (model.Balance, error) {
	if err := a.validate(address); err != nil {
		return model.Balance{}, err
	}
	summary, err := a.client.Address(ctx, address)
	switch {
	case errors.Is(err, chaindata.ErrNotFound):
		return model.Balance{}, nil
	case err != nil:
		return model.Balance{}, fmt.Errorf("address %s: %w", address, err)
	}
	return model.Balance{Confirmed: summary.Balance, Unconfirmed: summary.UnconfirmedBalance}, nil
}

// Strategy returns the unspent output strategy registered under name.
func (a *Accessor) Strategy(name string) (Strategy, error) {
	switch name {
	case StrategySimulated:
		return a.Simulated(), nil
	case StrategyAuthoritative:
		return a.Authoritative(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Simulated derives unspent outputs from the address history.
func (a *Accessor) Simulated() Strategy {
	return simulated{a: a}
}

// Authoritative asks the service's own unspent output index.
func (a *Accessor) Authoritative() Strategy {
	return authoritative{a: a}
}

func (a *Accessor) validate(address string) error {
	if !a.validator.ValidateAddress(address) {
		return fmt.Errorf("%w: %q", resolver.ErrInvalidAddress, address)
	}
	return nil
}

type simulated struct {
	a *Accessor
}

func (simulated) Name() string { return StrategySimulated }

func (s simulated) Unspent(ctx context.Context, address string) ([]model.UnspentOutput, error) {
	history, err := s.a.history.AddressHistory(ctx, address)
	if err != nil {
		return nil, err
	}
	unspent := ExtractUnspent(history, address)
	s.a.logger.Debug("simulated unspent outputs",
		zap.String("address", address),
		zap.Int("history", len(history)),
		zap.Int("unspent", len(unspent)),
	)
	return unspent, nil
}

type authoritative struct {
	a *Accessor
}

func (authoritative) Name() string { return StrategyAuthoritative }

func (s authoritative) Unspent(ctx context.Context, address string) ([]model.UnspentOutput, error) {
	if err := s.a.validate(address); err != nil {
		return nil, err
	}
	outputs, err := s.a.client.UnspentOutputs(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("unspent outputs of %s: %w", address, err)
	}
	return outputs, nil
}
