// Package main applies the PostgreSQL schema migrations
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/nutriplan/core/internal/infrastructure/persistence/migrations"
	"github.com/nutriplan/core/pkg/logger"
	"go.uber.org/zap"
)

const usage = `usage: migrate [-config path] <command>

commands:
  up              apply all pending migrations
  down            roll back the last migration
  reset           roll back every migration
  version         print the current version
  force <version> set the version without running migrations
  status          list applied and pending migrations
`

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      "console",
		ServiceName: "migrate",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := migrations.OpenURL(cfg.MigrationURL(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "reset":
		return m.Reset()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	case "status":
		status, err := m.Status()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", status.Version, status.Dirty)
		for _, mig := range status.Applied {
			fmt.Printf("  applied  %03d %s\n", mig.Version, mig.Name)
		}
		for _, mig := range status.Pending {
			fmt.Printf("  pending  %03d %s\n", mig.Version, mig.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
