// Package app wires the data client, key provider, resolver, accessor and assembler for one network.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/chainspend/internal/assembler"
	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/metrics"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/resolver"
	"github.com/goodnatureofminers/chainspend/internal/utxo"
	"go.uber.org/zap"
)

// Config is shared by the command line tools.
type Config struct {
	Network model.Network
	// DataURL overrides the public endpoint of the network.
	DataURL     string
	RegtestAddr string
	Timeout     time.Duration
	RPS         int

	// NodeRPCURL switches broadcasting from the data service to a bitcoind node.
	NodeRPCURL      string
	NodeRPCUser     string
	NodeRPCPassword string

	Strategy    string
	SettleDelay time.Duration
	Workers     int
}

type Broadcaster interface {
	Broadcast(ctx context.Context, rawTxHex string) (*model.BroadcastResult, error)
}

type App struct {
	Client      *chaindata.Client
	Keys        *keys.Provider
	Resolver    *resolver.Resolver
	Accessor    *utxo.Accessor
	Assembler   *assembler.Assembler
	Broadcaster Broadcaster

	node *rpcclient.Client
}

func New(cfg Config, logger *zap.Logger) (*App, error) {
	logger = logger.With(zap.String("network", string(cfg.Network)))

	baseURL := cfg.DataURL
	if baseURL == "" {
		var err error
		if baseURL, err = chaindata.BaseURL(cfg.Network, cfg.RegtestAddr); err != nil {
			return nil, err
		}
	}

	provider, err := keys.NewProvider(cfg.Network)
	if err != nil {
		return nil, err
	}

	dataMetrics := metrics.NewDataClient(cfg.Network)
	client, err := chaindata.NewClient(chaindata.Config{
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
		RPS:     cfg.RPS,
	}, dataMetrics, logger)
	if err != nil {
		return nil, fmt.Errorf("init data client: %w", err)
	}

	res := resolver.New(client, provider, logger)
	accessor := utxo.NewAccessor(client, res, provider, logger)

	strategyName := cfg.Strategy
	if strategyName == "" {
		strategyName = utxo.StrategySimulated
	}
	strategy, err := accessor.Strategy(strategyName)
	if err != nil {
		return nil, err
	}

	a := &App{
		Client:   client,
		Keys:     provider,
		Resolver: res,
		Accessor: accessor,
		Assembler: assembler.New(assembler.Config{
			SettleDelay: cfg.SettleDelay,
			Workers:     cfg.Workers,
		}, res, strategy, provider, metrics.NewAssembler(cfg.Network), logger),
		Broadcaster: client,
	}

	if cfg.NodeRPCURL != "" {
		node, err := chaindata.NewNodeRPCClient(cfg.NodeRPCURL, cfg.NodeRPCUser, cfg.NodeRPCPassword)
		if err != nil {
			return nil, fmt.Errorf("init node rpc client: %w", err)
		}
		a.node = node
		a.Broadcaster = chaindata.NewNodeBroadcaster(node, dataMetrics)
	}

	return a, nil
}

// Close releases the node connection, if any.
func (a *App) Close() {
	if a.node != nil {
		a.node.Shutdown()
		a.node.WaitForShutdown()
	}
}
