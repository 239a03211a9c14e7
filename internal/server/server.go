// Package server exposes the question-answering service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"albumrag/internal/config"
	"albumrag/internal/executor"
	"albumrag/internal/logger"
	"albumrag/internal/metrics"
	"albumrag/internal/router"
	"albumrag/internal/service"
)

const (
	apiName    = "Album Chat API"
	apiVersion = "1.0.0"
)

// QueryService is the subset of service.Service the API calls.
type QueryService interface {
	AnswerQuery(ctx context.Context, query string, k int) (*service.Answer, error)
	Route(ctx context.Context, query string) (router.RoutingPlan, error)
}

type Server struct {
	engine  *gin.Engine
	svc     QueryService
	cfg     config.ServerConfig
	metrics *metrics.Metrics
	log     logger.Logger
}

type queryRequest struct {
	Query string `json:"query"`
	// K is optional; nil means the service default.
	K *int `json:"k"`
}

type routeRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func New(svc QueryService, cfg config.ServerConfig, m *metrics.Metrics, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetDefault()
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(log), CORSMiddleware(cfg.CORSOrigins))
	s := &Server{engine: engine, svc: svc, cfg: cfg, metrics: m, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	api := s.engine.Group("/api")
	api.POST("/query", s.handleQuery)
	api.POST("/route", s.handleRoute)
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": apiName,
		"status":  "running",
		"version": apiVersion,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	k := 0
	if req.K != nil {
		if *req.K < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Detail: executor.ErrInvalidTopK.Error()})
			return
		}
		k = *req.K
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	answer, err := s.svc.AnswerQuery(ctx, req.Query, k)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	plan, err := s.svc.Route(ctx, req.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if t := s.cfg.RequestTimeout(); t > 0 {
		return context.WithTimeout(c.Request.Context(), t)
	}
	return context.WithCancel(c.Request.Context())
}

// fail maps caller mistakes to 400 and everything else to 500.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, service.ErrEmptyQuery) || errors.Is(err, executor.ErrInvalidTopK) {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}
	s.log.Error("query failed", "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: fmt.Sprintf("Error processing query: %v", err)})
}
