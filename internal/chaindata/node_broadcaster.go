package chaindata

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/chainspend/internal/model"
)

// NodeBroadcaster submits transactions to a bitcoind node instead of the data service.
type NodeBroadcaster struct {
	client  RawTxSender
	metrics Metrics
}

// NewNodeBroadcaster wraps an rpc client with metrics instrumentation.
func NewNodeBroadcaster(client RawTxSender, metrics Metrics) *NodeBroadcaster {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &NodeBroadcaster{client: client, metrics: metrics}
}

// Broadcast decodes the raw transaction and relays it through sendrawtransaction.
func (b *NodeBroadcaster) Broadcast(ctx context.Context, rawTxHex string) (res *model.BroadcastResult, err error) {
	started := time.Now()
	defer func() {
		b.metrics.Observe("send_raw_transaction", err, started)
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(rawTxHex)
	if err != nil {
		return nil, fmt.Errorf("decode raw transaction hex: %w", err)
	}
	var tx wire.MsgTx
	if err = tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("deserialize raw transaction: %w", err)
	}

	hash, err := b.client.SendRawTransaction(&tx, false)
	if err != nil {
		return nil, fmt.Errorf("send raw transaction %s: %w", tx.TxHash(), err)
	}
	return &model.BroadcastResult{Hash: hash.String()}, nil
}

// NewNodeRPCClient dials a bitcoind json-rpc endpoint in HTTP POST mode.
func NewNodeRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
