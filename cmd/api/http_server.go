package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/giovaniif/e-commerce/pix/infra/config"
	"github.com/giovaniif/e-commerce/pix/infra/logging"
	"github.com/giovaniif/e-commerce/pix/infra/metrics"
	"github.com/giovaniif/e-commerce/pix/infra/requestid"
	"github.com/giovaniif/e-commerce/pix/infra/tracing"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	deps   *Dependencies
	logger *slog.Logger
	now    func() time.Time
}

func NewServer(deps *Dependencies, logger *slog.Logger) *Server {
	return &Server{deps: deps, logger: logger, now: time.Now}
}

// Handler returns the gin routes wrapped in the permissive CORS policy.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(
		requestid.Middleware(),
		tracing.Middleware(),
		logging.Middleware(s.logger),
		metrics.Middleware,
		gin.Recovery(),
		preflight,
	)

	r.GET("/health", s.health)
	r.GET(metrics.MetricsPath, gin.WrapH(metrics.Handler()))

	pix := r.Group("/api/pix")
	{
		pix.POST("/create", s.createCharge)
		pix.POST("/consultar", s.chargeStatus)
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		OptionsPassthrough:   true,
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(r)
}

// StartServer serves the Pix API until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	shutdownTracing := tracing.Init(cfg.ServiceName, cfg.OTLPEndpoint)
	if shutdownTracing != nil {
		defer shutdownTracing()
	}

	deps, err := BuildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewServer(deps, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("pix service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down pix service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
