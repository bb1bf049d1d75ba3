// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nutriplan/core/internal/infrastructure/persistence/migrations"
	"github.com/nutriplan/core/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database closed at test end
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase("", logger.Silent)
	require.NoError(t, err, "Failed to set up sqlite database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// TestDatabase provides a PostgreSQL test database with cleanup
type TestDatabase struct {
	Container testcontainers.Container
	DB        *sql.DB
	GormDB    *gorm.DB
	DSN       string
	t         testing.TB
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "nutriplan_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// SetupTestDatabase starts PostgreSQL in a container and applies migrations
func SetupTestDatabase(t testing.TB) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig creates a test database with custom configuration
func SetupTestDatabaseWithConfig(t testing.TB, cfg DatabaseConfig) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	dsnFor := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Username, cfg.Password, host, port.Port(), cfg.Database)
	}

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        cfg.Image,
				ExposedPorts: []string{cfg.Port + "/tcp"},
				Env: map[string]string{
					"POSTGRES_DB":       cfg.Database,
					"POSTGRES_USER":     cfg.Username,
					"POSTGRES_PASSWORD": cfg.Password,
				},
				WaitingFor: wait.ForAll(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second),
					wait.ForSQL(nat.Port(cfg.Port+"/tcp"), "pgx", dsnFor),
				),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, nat.Port(cfg.Port))
	require.NoError(t, err)

	dsn := dsnFor(host, port)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.Ping(), "Failed to ping test database")

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to create GORM connection")

	td := &TestDatabase{
		Container: container,
		DB:        db,
		GormDB:    gormDB,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(td.Cleanup)

	require.NoError(t, td.RunMigrations(), "Failed to run migrations")
	return td
}

// RunMigrations applies the embedded migrations
func (td *TestDatabase) RunMigrations() error {
	m, err := migrations.New(td.DB, "nutriplan_test", zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

// TruncateAllTables empties every application table
func (td *TestDatabase) TruncateAllTables() error {
	_, err := td.DB.Exec(`TRUNCATE TABLE
		progress_entries, clients, shopping_list_items, shopping_lists,
		plan_templates, meal_slots, nutrition_plans, recipe_ingredients,
		recipes, ingredients CASCADE`)
	return err
}

// Cleanup closes connections and terminates the container
func (td *TestDatabase) Cleanup() {
	if td.DB != nil {
		td.DB.Close()
	}
	if sqlDB, err := td.GormDB.DB(); err == nil {
		sqlDB.Close()
	}
	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			td.t.Logf("Failed to terminate container: %v", err)
		}
	}
}
