package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/goodnatureofminers/chainspend/internal/app"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"go.uber.org/zap"
)

// env is shared by all commands; the app is built once global options are parsed.
type env struct {
	ctx    context.Context
	opts   *options
	logger *zap.Logger
	out    io.Writer

	once sync.Once
	app  *app.App
	err  error
}

func (e *env) App() (*app.App, error) {
	e.once.Do(func() {
		cfg, err := e.opts.appConfig()
		if err != nil {
			e.err = err
			return
		}
		if e.opts.MetricsAddr != "" {
			startMetricsServer(e.ctx, e.opts.MetricsAddr, e.logger)
		}
		e.app, e.err = app.New(cfg, e.logger)
	})
	return e.app, e.err
}

func (e *env) close() {
	if e.app != nil {
		e.app.Close()
	}
}

func (e *env) print(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type builtTx struct {
	TxID    string               `json:"txid"`
	Hex     string               `json:"hex"`
	Fee     int64                `json:"fee"`
	Outputs []keys.OutputSummary `json:"outputs"`
	Sent    string               `json:"broadcast_hash,omitempty"`
}

// finish prints a built transaction and optionally broadcasts it.
func (e *env) finish(a *app.App, raw *keys.RawTransaction, broadcast bool) error {
	reply := builtTx{
		TxID:    raw.TxID(),
		Hex:     raw.Hex(),
		Fee:     int64(raw.Fee()),
		Outputs: raw.Outputs(),
	}
	if broadcast {
		res, err := a.Broadcaster.Broadcast(e.ctx, raw.Hex())
		if err != nil {
			return err
		}
		reply.Sent = res.Hash
	}
	return e.print(reply)
}
