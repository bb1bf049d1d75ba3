// Package container assembles the application graph with Uber fx.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/application/materialize"
	"github.com/nutriplan/core/internal/application/nutrition"
	"github.com/nutriplan/core/internal/application/pipeline"
	"github.com/nutriplan/core/internal/application/progress"
	appshopping "github.com/nutriplan/core/internal/application/shopping"
	domainshopping "github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/infrastructure/cache"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/infrastructure/http/handlers"
	"github.com/nutriplan/core/internal/infrastructure/http/server"
	"github.com/nutriplan/core/internal/infrastructure/monitoring"
	"github.com/nutriplan/core/internal/infrastructure/notification"
	gormrepo "github.com/nutriplan/core/internal/infrastructure/persistence/gorm"
	"github.com/nutriplan/core/internal/infrastructure/persistence/memory"
	"github.com/nutriplan/core/internal/infrastructure/persistence/migrations"
	"github.com/nutriplan/core/internal/infrastructure/persistence/postgres"
	"github.com/nutriplan/core/internal/infrastructure/persistence/sqlite"
	"github.com/nutriplan/core/internal/ports/inbound"
	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/nutriplan/core/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPath is the configuration file handed to the container. Empty means
// the default search paths.
type ConfigPath string

// Database is the opened record store together with its pool
type Database struct {
	DB    *gorm.DB
	SQL   *sql.DB
	close func() error
}

// Ping checks the connection
func (d *Database) Ping(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

// Close releases the connection pool
func (d *Database) Close() error {
	return d.close()
}

// Module returns the complete application graph
func Module(configPath string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(configPath)),
		ConfigModule,
		LoggerModule,
		MonitoringModule,
		DatabaseModule,
		CacheModule,
		RepositoryModule,
		ServiceModule,
		HTTPModule,
		LifecycleModule,
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Options(
	fx.Provide(func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	}),
)

// LoggerModule provides the logger and its adjustable level
var LoggerModule = fx.Options(
	fx.Provide(func() *zap.AtomicLevel {
		level := zap.NewAtomicLevel()
		return &level
	}),
	fx.Provide(func(cfg *config.Config, level *zap.AtomicLevel) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
			ServiceName: cfg.App.Name,
			Atomic:      level,
		})
	}),
)

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Options(
	fx.Provide(monitoring.NewMetrics),
	fx.Provide(func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		version := cfg.Monitoring.ServiceVersion
		if version == "" {
			version = cfg.App.Version
		}
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	}),
	fx.Provide(monitoring.NewHealthCheckManager),
	fx.Provide(func(cfg *config.Config, metrics *monitoring.Metrics, health *monitoring.HealthCheckManager, log *zap.Logger) *monitoring.OpsServer {
		return monitoring.NewOpsServer(cfg.Ops, cfg.App.Version, metrics, health, log)
	}),
)

// DatabaseModule opens the configured database
var DatabaseModule = fx.Options(
	fx.Provide(NewDatabase),
	fx.Provide(func(d *Database) *gorm.DB { return d.DB }),
	fx.Invoke(func(d *Database, metrics *monitoring.Metrics, health *monitoring.HealthCheckManager, cfg *config.Config) error {
		health.RegisterCheck("database", monitoring.PingCheck("database", d.Ping))
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return metrics.RegisterDB(d.SQL, cfg.Database.Driver)
	}),
)

// CacheModule provides the analysis cache, backed by Redis when enabled
var CacheModule = fx.Options(
	fx.Provide(NewRedisClient),
	fx.Provide(NewCacheRepository),
)

// RepositoryModule provides the record stores
var RepositoryModule = fx.Options(
	fx.Provide(gormrepo.NewIngredientRepository),
	fx.Provide(gormrepo.NewRecipeRepository),
	fx.Provide(gormrepo.NewPlanRepository),
	fx.Provide(gormrepo.NewTemplateRepository),
	fx.Provide(gormrepo.NewShoppingListRepository),
	fx.Provide(gormrepo.NewClientRepository),
	fx.Provide(gormrepo.NewProgressRepository),
)

// ServiceModule provides the application services
var ServiceModule = fx.Options(
	fx.Provide(materialize.NewNormalizer),
	fx.Provide(materialize.NewMaterializer),
	fx.Provide(NewShoppingService),
	fx.Provide(func(s *appshopping.ShoppingService) inbound.ShoppingService { return s }),
	fx.Provide(func(cfg *config.Config, redis *cache.RedisClient, log *zap.Logger) (outbound.NotificationDispatcher, error) {
		return notification.NewDispatcher(cfg.Notification, redis, log)
	}),
	fx.Provide(NewPipeline),
	fx.Provide(pipeline.NewPlanService),
	fx.Provide(nutrition.NewNutritionService),
	fx.Provide(NewProgressService),
)

// HTTPModule provides the API server
var HTTPModule = fx.Options(
	fx.Provide(func(
		pipe inbound.PlanPipeline,
		plans inbound.PlanService,
		nutritionSvc inbound.NutritionService,
		shoppingSvc inbound.ShoppingService,
		progressSvc inbound.ProgressService,
		cfg *config.Config,
		log *zap.Logger,
	) *handlers.Handlers {
		return handlers.NewHandlers(handlers.Services{
			Pipeline:  pipe,
			Plans:     plans,
			Nutrition: nutritionSvc,
			Shopping:  shoppingSvc,
			Progress:  progressSvc,
		}, cfg.Server.MaxBodyBytes, log)
	}),
	fx.Provide(func(cfg *config.Config, h *handlers.Handlers, metrics *monitoring.Metrics, log *zap.Logger) *server.Server {
		return server.NewServer(cfg, h, metrics, log)
	}),
)

// LifecycleModule starts and stops the servers
var LifecycleModule = fx.Options(
	fx.Invoke(RegisterLifecycleHooks),
)

// NewDatabase opens SQLite or PostgreSQL according to the configuration.
// PostgreSQL schemas are brought up to date first when auto_migrate is set.
func NewDatabase(cfg *config.Config, log *zap.Logger) (*Database, error) {
	var d *Database
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrateUp(cfg, log); err != nil {
				return nil, err
			}
		}
		cm, err := postgres.NewConnectionManager(cfg, log)
		if err != nil {
			return nil, err
		}
		d = &Database{DB: cm.GetDB(), SQL: cm.SQLDB(), close: cm.Close}
	default:
		db, err := sqlite.SetupDatabase(cfg.Database.Path, postgres.ParseLogLevel(cfg.Database.LogLevel))
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
		}
		d = &Database{DB: db, SQL: sqlDB, close: sqlDB.Close}
	}

	if cfg.Database.Seed {
		ownerID, err := uuid.Parse(cfg.Database.SeedOwnerID)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("invalid seed owner id: %w", err)
		}
		if err := sqlite.SeedDatabase(d.DB, ownerID); err != nil {
			_ = d.Close()
			return nil, err
		}
		log.Info("Seeded demo templates", zap.String("owner_id", ownerID.String()))
	}
	return d, nil
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.Open(cfg.GetDSN(), cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// NewRedisClient connects to Redis, or returns nil when it is disabled
func NewRedisClient(cfg *config.Config, log *zap.Logger) (*cache.RedisClient, error) {
	if !cfg.Redis.Enable {
		return nil, nil
	}
	return cache.NewRedisClient(&cfg.Redis, log)
}

// NewCacheRepository picks Redis when a client exists and the in-process
// cache otherwise
func NewCacheRepository(cfg *config.Config, redis *cache.RedisClient, health *monitoring.HealthCheckManager, log *zap.Logger) outbound.CacheRepository {
	if redis == nil {
		return memory.NewCacheRepository()
	}
	health.RegisterCheck("redis", monitoring.PingCheck("redis", redis.Ping))
	return cache.NewRedisCacheRepository(redis, cfg.Redis.KeyPrefix, log)
}

// NewShoppingService loads the optional categorization rules file
func NewShoppingService(
	cfg *config.Config,
	lists outbound.ShoppingListRepository,
	plans outbound.PlanRepository,
	templates outbound.TemplateRepository,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) (*appshopping.ShoppingService, error) {
	options := appshopping.Options{
		DefaultName: cfg.Shopping.DefaultName,
		Exclude:     cfg.Shopping.Exclude,
	}
	if cfg.Shopping.RulesFile != "" {
		f, err := os.Open(cfg.Shopping.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open shopping rules: %w", err)
		}
		defer f.Close()
		rules, err := domainshopping.LoadRules(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load shopping rules %s: %w", cfg.Shopping.RulesFile, err)
		}
		options.Rules = rules
	}
	return appshopping.NewShoppingService(lists, plans, templates, options, metrics, log), nil
}

// NewPipeline wires the materialization pipeline
func NewPipeline(
	normalizer *materialize.Normalizer,
	materializer *materialize.Materializer,
	plans outbound.PlanRepository,
	lists *appshopping.ShoppingService,
	notifier outbound.NotificationDispatcher,
	metrics *monitoring.Metrics,
	tracing *monitoring.TracingProvider,
	log *zap.Logger,
) inbound.PlanPipeline {
	return pipeline.NewPipeline(normalizer, materializer, plans, lists, notifier, metrics, tracing.Tracer(), log)
}

// NewProgressService wires progress tracking with the analysis cache
func NewProgressService(
	cfg *config.Config,
	clients outbound.ClientRepository,
	entries outbound.ProgressRepository,
	templates outbound.TemplateRepository,
	cacheRepo outbound.CacheRepository,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) inbound.ProgressService {
	return progress.NewProgressService(clients, entries, templates, cacheRepo,
		progress.Options{CacheTTL: cfg.Progress.CacheTTL}, metrics, log)
}

// LifecycleParams holds everything started or released with the application
type LifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	ConfigPath ConfigPath
	Level      *zap.AtomicLevel
	Logger     *zap.Logger
	Server     *server.Server
	Ops        *monitoring.OpsServer
	Tracing    *monitoring.TracingProvider
	Database   *Database
	Redis      *cache.RedisClient
	Cache      outbound.CacheRepository
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(p LifecycleParams) {
	log := p.Logger
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", p.Config.App.Name),
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
				zap.String("database", p.Config.Database.Driver),
			)

			go func() {
				if err := p.Server.Start(); err != nil {
					log.Error("API server failed", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			if p.Config.Ops.Enable {
				p.Ops.Start()
			}

			// Only the log level is applied live; other settings need a restart.
			return config.Watch(string(p.ConfigPath), log, func(cfg *config.Config) {
				p.Level.SetLevel(logger.ParseLevel(cfg.App.LogLevel))
			})
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping application")

			if err := p.Server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown API server", zap.Error(err))
			}
			if p.Config.Ops.Enable {
				if err := p.Ops.Stop(ctx); err != nil {
					log.Error("Failed to stop ops server", zap.Error(err))
				}
			}
			if err := p.Tracing.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown tracing", zap.Error(err))
			}
			if mem, ok := p.Cache.(*memory.CacheRepository); ok {
				mem.Close()
			}
			if p.Redis != nil {
				if err := p.Redis.Close(); err != nil {
					log.Error("Failed to close Redis", zap.Error(err))
				}
			}
			if err := p.Database.Close(); err != nil {
				log.Error("Failed to close database", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
