// Package devserver serves the subset of the hosted backend's REST dialect
// that the client uses, backed by a local SQLite store. It lets the client
// run end to end without the hosted backend.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/metrics"
	"github.com/nhle/notification-center/internal/store"
)

// Options configures a Server.
type Options struct {
	// APIKey, when set, must be sent in the apikey header of every REST
	// call.
	APIKey string

	Logger *zap.Logger

	// Gatherer backs the /metrics endpoint. Defaults to the global
	// registry.
	Gatherer prometheus.Gatherer
}

// Server is the development backend.
type Server struct {
	store  store.Store
	router *gin.Engine
	log    *zap.Logger
}

// New builds a Server over st.
func New(st store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(recovery(opts.Logger))
	router.Use(requestLogger(opts.Logger))

	s := &Server{
		store:  st,
		router: router,
		log:    opts.Logger,
	}
	s.setupRoutes(opts)
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(opts Options) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))

	rest := s.router.Group("/rest/v1")
	rest.Use(apiKeyAuth(opts.APIKey))
	{
		rest.GET("/transactions", s.handleListTransactions())
		rest.POST("/transactions", s.handleCreateTransaction())

		rest.GET("/transaction_notifications", s.handleListTransactionNotifications())
		rest.HEAD("/transaction_notifications", s.handleCountTransactionNotifications())
		rest.POST("/transaction_notifications", s.handleCreateTransactionNotification())
		rest.PATCH("/transaction_notifications", s.handleUpdateTransactionNotifications())

		rest.GET("/global_notifications", s.handleListGlobalNotifications())
		rest.POST("/global_notifications", s.handleCreateGlobalNotification())

		rest.GET("/global_notification_read_status", s.handleListReadStatus())
		rest.HEAD("/global_notification_read_status", s.handleCountReadStatus())
		rest.POST("/global_notification_read_status", s.handleInsertReadStatus())
		rest.PATCH("/global_notification_read_status", s.handleUpdateReadStatus())

		rest.POST("/rpc/:fn", s.handleRPC())
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dev backend listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
