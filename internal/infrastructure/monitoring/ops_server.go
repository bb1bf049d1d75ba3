package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OpsServer exposes metrics, liveness and readiness on a separate port
type OpsServer struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewOpsServer builds the operations server
func NewOpsServer(cfg config.OpsConfig, version string, metrics *Metrics, health *HealthCheckManager, logger *zap.Logger) *OpsServer {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	started := time.Now()

	engine.GET(cfg.MetricsPath, gin.WrapH(metrics.Handler()))

	engine.GET(cfg.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  StatusHealthy,
			"version": version,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	})

	engine.GET(cfg.ReadinessPath, func(c *gin.Context) {
		checks, ok := health.CheckAll(c.Request.Context())
		status, code := StatusHealthy, http.StatusOK
		if !ok {
			status, code = StatusUnhealthy, http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"checks": checks,
		})
	})

	return &OpsServer{
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("ops-server"),
	}
}

// Handler returns the router, used by tests
func (s *OpsServer) Handler() http.Handler {
	return s.engine
}

// Start serves in the background
func (s *OpsServer) Start() {
	go func() {
		s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ops server failed", zap.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully
func (s *OpsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
