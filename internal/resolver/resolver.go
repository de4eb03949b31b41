// Package resolver turns addresses, hashes, heights and the latest-block marker into transactions.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"go.uber.org/zap"
)

const latestRef = "latest"

// ResultKind tells which remote resource an identifier resolved to.
type ResultKind string

const (
	ResultAddress     ResultKind = "address"
	ResultTransaction ResultKind = "transaction"
	ResultBlock       ResultKind = "block"
)

// Resolution is the outcome of resolving one identifier.
type Resolution struct {
	Kind         ResultKind
	Transactions []model.Transaction
}

type options struct {
	confirmations *int64
	asBlock       bool
}

// Option tunes a single Resolve call.
type Option func(*options)

// WithConfirmations keeps only transactions with exactly n confirmations.
func WithConfirmations(n int64) Option {
	return func(o *options) {
		o.confirmations = &n
	}
}

// AsBlock treats a hash identifier as a block id without probing transactions first.
func AsBlock() Option {
	return func(o *options) {
		o.asBlock = true
	}
}

type Resolver struct {
	client    DataClient
	validator AddressValidator
	logger    *zap.Logger
}

func New(client DataClient, validator AddressValidator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:    client,
		validator: validator,
		logger:    logger.Named("resolver"),
	}
}

// Resolve fetches the transactions an identifier denotes.
func (r *Resolver) Resolve(ctx context.Context, id model.Identifier, opts ...Option) (*Resolution, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		res *Resolution
		err error
	)
	switch id.Kind {
	case model.KindAddress:
		res, err = r.resolveAddress(ctx, id.Value)
	case model.KindHash:
		res, err = r.resolveHash(ctx, id.Value, o.asBlock)
	case model.KindHeight:
		res, err = r.resolveHeight(ctx, id.Height)
	case model.KindLatest:
		res, err = r.resolveBlockRef(ctx, latestRef)
	default:
		return nil, &UnrecognizedIdentifierError{Value: id.Value, Type: id.Type}
	}
	if err != nil {
		return nil, err
	}

	if o.confirmations != nil {
		res.Transactions = model.FilterByConfirmations(res.Transactions, *o.confirmations)
	}
	return res, nil
}

// Transaction looks up a transaction id and never falls back to blocks.
func (r *Resolver) Transaction(ctx context.Context, txid string) (*model.Transaction, error) {
	tx, err := r.client.Transaction(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txid, err)
	}
	return tx, nil
}

// AddressHistory returns confirmed followed by unconfirmed transactions of address.
func (r *Resolver) AddressHistory(ctx context.Context, address string) ([]model.Transaction, error) {
	res, err := r.resolveAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// TxIDs resolves id and projects the result to transaction hashes.
func (r *Resolver) TxIDs(ctx context.Context, id model.Identifier, opts ...Option) ([]string, error) {
	res, err := r.Resolve(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	return model.Hashes(res.Transactions), nil
}

// Block returns the block record a height, a block id or the latest marker denotes.
func (r *Resolver) Block(ctx context.Context, id model.Identifier) (*model.Block, error) {
	switch id.Kind {
	case model.KindLatest:
		block, err := r.client.Block(ctx, latestRef)
		if err != nil {
			return nil, fmt.Errorf("latest block: %w", err)
		}
		return block, nil
	case model.KindHeight:
		block, err := r.client.Block(ctx, strconv.FormatUint(id.Height, 10))
		switch {
		case errors.Is(err, chaindata.ErrNotFound):
			return nil, fmt.Errorf("%w: %d", ErrNoBlockAtHeight, id.Height)
		case err != nil:
			return nil, fmt.Errorf("block at height %d: %w", id.Height, err)
		}
		return block, nil
	case model.KindHash:
		block, err := r.client.Block(ctx, id.Value)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", id.Value, err)
		}
		return block, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotBlockIdentifier, id.Value)
	}
}

// LatestHeight returns the height of the most recent block.
func (r *Resolver) LatestHeight(ctx context.Context) (uint64, error) {
	block, err := r.client.Block(ctx, latestRef)
	if err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}
	return block.Height, nil
}

func (r *Resolver) resolveAddress(ctx context.Context, address string) (*Resolution, error) {
	if !r.validator.ValidateAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	txs, err := r.client.AddressTransactions(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("address %s: %w", address, err)
	}
	return &Resolution{Kind: ResultAddress, Transactions: txs.History()}, nil
}

func (r *Resolver) resolveHash(ctx context.Context, hash string, asBlock bool) (*Resolution, error) {
	if !asBlock {
		tx, err := r.client.Transaction(ctx, hash)
		switch {
		case err == nil:
			return &Resolution{Kind: ResultTransaction, Transactions: []model.Transaction{*tx}}, nil
		case !errors.Is(err, chaindata.ErrNotFound):
			return nil, fmt.Errorf("transaction %s: %w", hash, err)
		}
		r.logger.Debug("hash is not a transaction, trying block", zap.String("hash", hash))
	}
	return r.blockTransactions(ctx, hash)
}

func (r *Resolver) resolveHeight(ctx context.Context, height uint64) (*Resolution, error) {
	block, err := r.client.Block(ctx, strconv.FormatUint(height, 10))
	switch {
	case errors.Is(err, chaindata.ErrNotFound):
		return nil, fmt.Errorf("%w: %d", ErrNoBlockAtHeight, height)
	case err != nil:
		return nil, fmt.Errorf("block at height %d: %w", height, err)
	}
	return r.blockTransactions(ctx, block.Hash)
}

func (r *Resolver) resolveBlockRef(ctx context.Context, ref string) (*Resolution, error) {
	block, err := r.client.Block(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", ref, err)
	}
	return r.blockTransactions(ctx, block.Hash)
}

func (r *Resolver) blockTransactions(ctx context.Context, hash string) (*Resolution, error) {
	block, err := r.client.BlockTransactions(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("block %s transactions: %w", hash, err)
	}
	return &Resolution{Kind: ResultBlock, Transactions: block.Transactions}, nil
}
