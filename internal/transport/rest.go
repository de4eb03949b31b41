package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goodnatureofminers/chainspend/internal/chaindata"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/resolver"
	"github.com/goodnatureofminers/chainspend/internal/utxo"
	"go.uber.org/zap"
)

// RESTPrefix is where the REST API is mounted.
const RESTPrefix = "/api/v1"

const latestBlock = "latest"

type broadcastRequest struct {
	Hex string `json:"hex" binding:"required"`
}

type resolveReply struct {
	Kind         resolver.ResultKind `json:"kind"`
	Transactions []model.Transaction `json:"transactions"`
	TxIDs        []string            `json:"txids"`
}

type unspentReply struct {
	Strategy string                `json:"strategy"`
	Total    int64                 `json:"total"`
	Outputs  []model.UnspentOutput `json:"outputs"`
}

// RESTServer serves read only chain queries and raw transaction broadcast.
// Building transactions is left to the CLI so that secrets never travel over HTTP.
type RESTServer struct {
	resolver    Resolver
	balances    Balances
	broadcaster Broadcaster
	prober      Prober
	logger      *zap.Logger
}

func NewRESTServer(r Resolver, b Balances, bc Broadcaster, p Prober, logger *zap.Logger) *RESTServer {
	return &RESTServer{
		resolver:    r,
		balances:    b,
		broadcaster: bc,
		prober:      p,
		logger:      logger.Named("rest"),
	}
}

// Handler returns the gin engine with every route registered under RESTPrefix.
func (s *RESTServer) Handler() http.Handler {
	engine := gin.New()
	engine.Use(LogMiddleware(s.logger), gin.Recovery())

	api := engine.Group(RESTPrefix)
	api.GET("resolve", s.resolveHandle())
	api.GET("height", s.heightHandle())
	api.GET("blocks/:id", s.blockHandle())
	api.GET("online", s.onlineHandle())
	api.GET("addresses/:address/balance", s.balanceHandle())
	api.GET("addresses/:address/unspent", s.unspentHandle())
	api.POST("broadcast", s.broadcastHandle())
	return engine
}

func (s *RESTServer) resolveHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts []resolver.Option
		if raw, ok := c.GetQuery("confirmations"); ok {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				badRequest(c, "confirmations must be a non-negative integer")
				return
			}
			opts = append(opts, resolver.WithConfirmations(n))
		}
		if c.Query("block") == "true" {
			opts = append(opts, resolver.AsBlock())
		}

		res, err := s.resolver.Resolve(c.Request.Context(), model.ClassifyString(c.Query("id")), opts...)
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, resolveReply{
			Kind:         res.Kind,
			Transactions: res.Transactions,
			TxIDs:        model.Hashes(res.Transactions),
		})
	}
}

func (s *RESTServer) heightHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		height, err := s.resolver.LatestHeight(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, gin.H{"height": height})
	}
}

// blockHandle accepts a height, a block id or "latest".
func (s *RESTServer) blockHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := model.Latest()
		if ref := c.Param("id"); ref != latestBlock {
			id = model.ClassifyString(ref)
		}
		block, err := s.resolver.Block(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, block)
	}
}

func (s *RESTServer) onlineHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, gin.H{"online": s.prober.Online(c.Request.Context())})
	}
}

func (s *RESTServer) balanceHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		balance, err := s.balances.Balance(c.Request.Context(), c.Param("address"))
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, balance)
	}
}

func (s *RESTServer) unspentHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		strategy, err := s.balances.Strategy(c.DefaultQuery("strategy", utxo.StrategyAuthoritative))
		if err != nil {
			s.fail(c, err)
			return
		}
		outputs, err := strategy.Unspent(c.Request.Context(), c.Param("address"))
		if err != nil {
			s.fail(c, err)
			return
		}
		total, err := utxo.Total(outputs)
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, unspentReply{Strategy: strategy.Name(), Total: total, Outputs: outputs})
	}
}

func (s *RESTServer) broadcastHandle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req broadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := s.broadcaster.Broadcast(c.Request.Context(), req.Hex)
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, res)
	}
}

func (s *RESTServer) fail(c *gin.Context, err error) {
	code := statusFor(err)
	_ = c.Error(err)
	c.JSON(code, gin.H{"code": code, "msg": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, resolver.ErrInvalidAddress),
		errors.Is(err, resolver.ErrUnrecognizedIdentifier),
		errors.Is(err, resolver.ErrNotBlockIdentifier),
		errors.Is(err, utxo.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, chaindata.ErrNotFound),
		errors.Is(err, resolver.ErrNoBlockAtHeight):
		return http.StatusNotFound
	case errors.Is(err, chaindata.ErrTransportUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "msg": msg})
}
