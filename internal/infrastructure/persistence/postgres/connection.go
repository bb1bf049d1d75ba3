// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// ConnectionManager manages the primary PostgreSQL connection and its read
// replicas
type ConnectionManager struct {
	config  *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	writeDB *sql.DB
}

// NewConnectionManager opens the primary connection and registers replicas
func NewConnectionManager(cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		config: cfg,
		logger: log.Named("postgres"),
	}

	if err := cm.initializePrimaryConnection(); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	// Initialize read replicas if configured
	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.Database.ConnMaxLifetime),
		zap.Duration("slow_query_threshold", cfg.Database.SlowQueryThreshold),
		zap.Int("replicas", len(cfg.Database.ReplicaHosts)),
	)

	return cm, nil
}

// initializePrimaryConnection sets up the primary database connection
func (cm *ConnectionManager) initializePrimaryConnection() error {
	db, err := gorm.Open(postgres.Open(cm.config.GetDSN()), &gorm.Config{
		Logger:         NewGORMLogger(cm.logger, cm.config.Database.LogLevel, cm.config.Database.SlowQueryThreshold),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cm.config.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cm.config.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cm.config.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cm.config.Database.ConnMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.writeDB = sqlDB
	return nil
}

// initializeReadReplicas routes reads to the replicas through dbresolver.
// Writes and transactions stay on the primary.
func (cm *ConnectionManager) initializeReadReplicas() error {
	dsns := cm.config.ReplicaDSNs()
	if len(dsns) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(dsns))
	for i, dsn := range dsns {
		replicas[i] = postgres.Open(dsn)
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cm.config.Database.MaxOpenConns).
		SetMaxIdleConns(cm.config.Database.MaxIdleConns).
		SetConnMaxLifetime(cm.config.Database.ConnMaxLifetime).
		SetConnMaxIdleTime(cm.config.Database.ConnMaxIdleTime)

	if err := cm.db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.logger.Info("Read replicas configured", zap.Int("replica_count", len(dsns)))
	return nil
}

// GetDB returns the main database connection
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// HealthCheck pings the primary
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.writeDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes the primary pool
func (cm *ConnectionManager) Close() error {
	if cm.writeDB == nil {
		return nil
	}
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close primary database", zap.Error(err))
		return err
	}
	return nil
}

// NewGORMLogger builds a GORM logger that writes through zap
func NewGORMLogger(log *zap.Logger, level string, slowThreshold time.Duration) logger.Interface {
	return logger.New(
		&GORMLogWriter{logger: log.Named("gorm")},
		logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  ParseLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// ParseLogLevel maps a config level onto a GORM log level
func ParseLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// GORMLogWriter adapts zap to GORM's log writer
type GORMLogWriter struct {
	logger *zap.Logger
}

// Printf implements logger.Writer
func (w *GORMLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}
