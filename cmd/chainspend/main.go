// Command chainspend queries a blockchain data service and builds signed transactions.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/app"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type options struct {
	Network     string        `long:"network" env:"CHAINSPEND_NETWORK" description:"bitcoin network (mainnet, testnet, regtest)" default:"testnet"`
	DataURL     string        `long:"data-url" env:"CHAINSPEND_DATA_URL" description:"blockchain data service base url, overrides the network default"`
	RegtestAddr string        `long:"regtest-addr" env:"CHAINSPEND_REGTEST_ADDR" description:"host:port of the regtest data service" default:"localhost:5000"`
	Timeout     time.Duration `long:"timeout" env:"CHAINSPEND_TIMEOUT" description:"HTTP timeout for data service requests" default:"30s"`
	RPS         int           `long:"rps" env:"CHAINSPEND_RPS" description:"max data service requests per second, 0 disables the limit" default:"0"`
	Strategy    string        `long:"utxo-strategy" env:"CHAINSPEND_UTXO_STRATEGY" description:"unspent output source for drains (simulated, authoritative)" default:"simulated"`
	SettleDelay time.Duration `long:"settle-delay" env:"CHAINSPEND_SETTLE_DELAY" description:"wait before re-checking unspent outputs of a drain, negative disables" default:"2s"`
	Workers     int           `long:"workers" env:"CHAINSPEND_WORKERS" description:"parallel previous transaction fetches" default:"4"`
	NodeRPCURL  string        `long:"node-rpc-url" env:"CHAINSPEND_NODE_RPC_URL" description:"broadcast through a bitcoind node instead of the data service"`
	NodeRPCUser string        `long:"node-rpc-user" env:"CHAINSPEND_NODE_RPC_USER" description:"bitcoind rpc username"`
	NodeRPCPass string        `long:"node-rpc-password" env:"CHAINSPEND_NODE_RPC_PASSWORD" description:"bitcoind rpc password"`
	MetricsAddr string        `long:"metrics-addr" env:"CHAINSPEND_METRICS_ADDR" description:"serve prometheus metrics while the command runs"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	var opts options
	e := &env{ctx: ctx, opts: &opts, logger: logger, out: os.Stdout}
	defer e.close()

	parser := flags.NewParser(&opts, flags.Default)
	registerCommands(parser, e)

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("chainspend failed", zap.Error(err))
	}
}

func (o *options) appConfig() (app.Config, error) {
	network, err := model.ParseNetwork(o.Network)
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		Network:         network,
		DataURL:         o.DataURL,
		RegtestAddr:     o.RegtestAddr,
		Timeout:         o.Timeout,
		RPS:             o.RPS,
		NodeRPCURL:      o.NodeRPCURL,
		NodeRPCUser:     o.NodeRPCUser,
		NodeRPCPassword: o.NodeRPCPass,
		Strategy:        o.Strategy,
		SettleDelay:     o.SettleDelay,
		Workers:         o.Workers,
	}, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
