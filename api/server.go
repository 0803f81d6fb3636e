// Package api serves the offsign HTTP API: inspecting and signing prepared
// transactions, health and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/signer"
	"github.com/bitfsorg/walletsdk-go/store"
	"github.com/bitfsorg/walletsdk-go/variant"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 4 << 20

type (
	// Metrics records served requests.
	Metrics interface {
		ObserveRequest(method, route string, code int, started time.Time)
	}
)

// Server is the HTTP front of a Signer.
type Server struct {
	signer  signer.Signer
	network *wallet.NetworkConfig
	store   store.Store
	node    network.NodeClient
	metrics Metrics
	logger  *zap.Logger
	engine  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

// WithStore records every envelope signed through the API.
func WithStore(st store.Store) Option { return func(s *Server) { s.store = st } }

// WithNode enables POST /v1/submit.
func WithNode(c network.NodeClient) Option { return func(s *Server) { s.node = c } }

func WithMetrics(m Metrics) Option { return func(s *Server) { s.metrics = m } }

// NewServer builds the gin engine. Addresses in summaries use the HRP of n.
func NewServer(sg signer.Signer, n *wallet.NetworkConfig, opts ...Option) *Server {
	s := &Server{signer: sg, network: n, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	v1 := r.Group("/v1")
	v1.POST("/inspect", s.inspect)
	v1.POST("/sign", s.sign)
	v1.POST("/submit", s.submit)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// observe logs and measures each request by its route template.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		code := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.ObserveRequest(c.Request.Method, route, code, started)
		}
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", code),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type signResponse struct {
	SigningHash   string                    `json:"signingHash"`
	TransactionID block.TransactionID       `json:"transactionId"`
	Payload       *block.TransactionPayload `json:"payload"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "network": s.network.Name})
}

func (s *Server) inspect(c *gin.Context) {
	p, ok := s.readPrepared(c)
	if !ok {
		return
	}
	sum, err := Summarize(p, s.network.Bech32HRP)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) sign(c *gin.Context) {
	p, ok := s.readPrepared(c)
	if !ok {
		return
	}
	if s.signer == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no signer configured"})
		return
	}

	if s.store != nil {
		if _, err := s.store.PutPrepared(p); err != nil && !errors.Is(err, store.ErrExists) {
			s.fail(c, err)
			return
		}
	}
	payload, err := signer.Sign(c.Request.Context(), s.signer, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.store != nil {
		if _, err := s.store.PutSigned(payload); err != nil && !errors.Is(err, store.ErrExists) {
			s.fail(c, err)
			return
		}
	}

	key := store.KeyOf(p)
	s.logger.Info("signed via api", zap.Stringer("signing_hash", key), zap.Stringer("transaction_id", payload.ID()))
	c.JSON(http.StatusOK, signResponse{SigningHash: key.String(), TransactionID: payload.ID(), Payload: payload})
}

func (s *Server) submit(c *gin.Context) {
	if s.node == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no node configured"})
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	var payload block.TransactionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id, err := s.node.SubmitPayload(c.Request.Context(), &payload)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactionId": id})
}

func (s *Server) readPrepared(c *gin.Context) (*prepared.PreparedTransactionData, bool) {
	body, ok := readBody(c)
	if !ok {
		return nil, false
	}
	var p prepared.PreparedTransactionData
	if err := json.Unmarshal(body, &p); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return &p, true
}

// readBody reads the request body, answering 413 when it exceeds
// MaxBodyBytes.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		c.JSON(code, errorResponse{Error: err.Error()})
		return nil, false
	}
	return body, true
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, errorResponse{Error: err.Error()})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, signer.ErrUnavailable), errors.Is(err, network.ErrConnectionFailed):
		return http.StatusBadGateway
	case errors.Is(err, network.ErrSubmitRejected),
		errors.Is(err, prepared.ErrUnlockMismatch),
		errors.Is(err, signer.ErrKeyMismatch),
		errors.Is(err, signer.ErrMissingChain),
		errors.Is(err, signer.ErrUnsupportedOwner),
		errors.Is(err, wallet.ErrCoinTypeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, prepared.ErrAlreadySigned), errors.Is(err, store.ErrExists):
		return http.StatusConflict
	case errors.Is(err, variant.ErrUnknownVariant),
		errors.Is(err, variant.ErrMissingTag),
		errors.Is(err, variant.ErrMalformed),
		errors.Is(err, prepared.ErrMissingMetadata),
		errors.Is(err, prepared.ErrEmptyInputs),
		errors.Is(err, prepared.ErrInputOrder),
		errors.Is(err, block.ErrInvalidEssence),
		errors.Is(err, block.ErrMalformedOutputID),
		errors.Is(err, wallet.ErrInvalidPath):
		return http.StatusBadRequest
	}
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syntax) || errors.As(err, &typ) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
