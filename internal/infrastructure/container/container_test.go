package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"
)

func TestModule_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module("")))
}

func TestNewDatabase_SQLiteWithSeed(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "nutriplan.db"),
		LogLevel:    "silent",
		Seed:        true,
		SeedOwnerID: uuid.NewString(),
	}}

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(context.Background()))

	var templates int64
	require.NoError(t, db.DB.Table("plan_templates").Count(&templates).Error)
	assert.Positive(t, templates)
}

func TestNewDatabase_InvalidSeedOwner(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "nutriplan.db"),
		Seed:        true,
		SeedOwnerID: "not-a-uuid",
	}}

	_, err := NewDatabase(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "seed owner")
}
