package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodnatureofminers/blockinsight7000-proto/pkg/blockinsight7000/v1"
	"github.com/goodnatureofminers/chainspend/internal/app"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/transport"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var config struct {
	Addr        string        `long:"addr" env:"CHAINSPEND_GATEWAY_ADDR" description:"addr" default:":8000"`
	RestAddr    string        `long:"rest-addr" env:"CHAINSPEND_GATEWAY_REST_ADDR" description:"rest addr" default:":8001"`
	Network     string        `long:"network" env:"CHAINSPEND_NETWORK" description:"bitcoin network (mainnet, testnet, regtest)" required:"true"`
	DataURL     string        `long:"data-url" env:"CHAINSPEND_DATA_URL" description:"blockchain data service base url, overrides the network default"`
	RegtestAddr string        `long:"regtest-addr" env:"CHAINSPEND_REGTEST_ADDR" description:"host:port of the regtest data service" default:"localhost:5000"`
	Timeout     time.Duration `long:"timeout" env:"CHAINSPEND_TIMEOUT" description:"HTTP timeout for data service requests" default:"30s"`
	RPS         int           `long:"rps" env:"CHAINSPEND_RPS" description:"max data service requests per second, 0 disables the limit" default:"10"`
	NodeRPCURL  string        `long:"node-rpc-url" env:"CHAINSPEND_NODE_RPC_URL" description:"broadcast through a bitcoind node instead of the data service"`
	NodeRPCUser string        `long:"node-rpc-user" env:"CHAINSPEND_NODE_RPC_USER" description:"bitcoind rpc username"`
	NodeRPCPass string        `long:"node-rpc-password" env:"CHAINSPEND_NODE_RPC_PASSWORD" description:"bitcoind rpc password"`
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
	grpcZap.ReplaceGrpcLoggerV2(logger)
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	network, err := model.ParseNetwork(config.Network)
	if err != nil {
		logger.Fatal("Invalid network", zap.Error(err))
	}
	chainspend, err := app.New(app.Config{
		Network:         network,
		DataURL:         config.DataURL,
		RegtestAddr:     config.RegtestAddr,
		Timeout:         config.Timeout,
		RPS:             config.RPS,
		NodeRPCURL:      config.NodeRPCURL,
		NodeRPCUser:     config.NodeRPCUser,
		NodeRPCPassword: config.NodeRPCPass,
	}, logger)
	if err != nil {
		logger.Fatal("Init chainspend", zap.Error(err))
	}
	defer chainspend.Close()

	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(grpcServer)

	blockinsight7000v1.RegisterExplorerServiceServer(grpcServer, transport.NewExplorerHandler(chainspend.Client))

	socket, err := net.Listen("tcp", config.Addr)
	if err != nil {
		logger.Fatal("net.Listen error", zap.Error(err))
	}
	go func() {
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Fatal("Start GRPC server", zap.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	mux := http.NewServeMux()

	gw := gwruntime.NewServeMux()
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if err := blockinsight7000v1.RegisterExplorerServiceHandlerFromEndpoint(ctx, gw, config.Addr, opts); err != nil {
		logger.Fatal("Register explorer handler", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	rest := transport.NewRESTServer(
		chainspend.Resolver,
		chainspend.Accessor,
		chainspend.Broadcaster,
		chainspend.Client,
		logger,
	)

	mux.Handle("/", gw)
	mux.Handle(transport.RESTPrefix+"/", rest.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.RestAddr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.RestAddr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
