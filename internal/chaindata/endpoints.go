package chaindata

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"go.uber.org/zap"
)

// Address returns the summary of an address.
func (c *Client) Address(ctx context.Context, address string) (*model.Address, error) {
	var out model.Address
	if err := c.getJSON(ctx, "address", &out, "addresses", address); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddressTransactions returns the confirmed and unconfirmed history of an address.
func (c *Client) AddressTransactions(ctx context.Context, address string) (*model.AddressTransactions, error) {
	var out model.AddressTransactions
	if err := c.getJSON(ctx, "address_transactions", &out, "addresses", address, "transactions"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnspentOutputs returns the service's own indexed unspent outputs of an address.
func (c *Client) UnspentOutputs(ctx context.Context, address string) ([]model.UnspentOutput, error) {
	var out []model.UnspentOutput
	if err := c.getJSON(ctx, "unspent_outputs", &out, "addresses", address, "unspent_outputs"); err != nil {
		return nil, err
	}
	return out, nil
}

// Transaction returns a single transaction by id.
func (c *Client) Transaction(ctx context.Context, txid string) (*model.Transaction, error) {
	var out model.Transaction
	if err := c.getJSON(ctx, "transaction", &out, "transactions", txid); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unconfirmed returns a page of the transactions currently in the mempool.
func (c *Client) Unconfirmed(ctx context.Context, page *Pagination) ([]model.Transaction, error) {
	var out []model.Transaction
	if err := c.getPage(ctx, "unconfirmed", &out, page, "transactions", "unconfirmed"); err != nil {
		return nil, err
	}
	return out, nil
}

// Block returns a block by hash, height or the literal "latest".
func (c *Client) Block(ctx context.Context, ref string) (*model.Block, error) {
	var out model.Block
	if err := c.getJSON(ctx, "block", &out, "blocks", ref); err != nil {
		return nil, err
	}
	return &out, nil
}

// BlockTransactions returns a block and the transactions it contains.
func (c *Client) BlockTransactions(ctx context.Context, ref string) (*model.BlockTransactions, error) {
	var out model.BlockTransactions
	if err := c.getJSON(ctx, "block_transactions", &out, "blocks", ref, "transactions"); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestHeight returns the height of the latest block.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	block, err := c.Block(ctx, "latest")
	if err != nil {
		return 0, err
	}
	return block.Height, nil
}

// Status returns the status string the service reports about itself.
func (c *Client) Status(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "status", &out, "toshi.json"); err != nil {
		return "", err
	}
	return out.Status, nil
}

// Online reports whether the service answers at all. The API root answers
// 404, which counts as reachable; failures never propagate.
func (c *Client) Online(ctx context.Context) bool {
	_, err := c.fetch(ctx, "online", nil, nil)
	if err == nil || errors.Is(err, ErrNotFound) {
		return true
	}
	c.logger.Debug("data service unreachable", zap.Error(err))
	return false
}
