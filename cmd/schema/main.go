package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/scanstack-io/Scantree/internal/config"
	"github.com/scanstack-io/Scantree/internal/infra/db"
	"github.com/scanstack-io/Scantree/internal/infra/logger"
	"github.com/scanstack-io/Scantree/internal/migrate"
)

// Exit codes for confirm_schema_match. Deployment scripts branch on these
// to decide whether an upgrade run is required before rolling the service.
const (
	exitMatch        = 0
	exitUpgradable   = 42
	exitIncompatible = 43
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <confirm_schema_match|upgrade_schema>\n", os.Args[0])
}

func main() {
	if len(os.Args) != 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	gdb, err := db.New(cfg)
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		os.Exit(1)
	}

	engine := migrate.New(gdb, migrate.NewGormVersionStore(gdb), log)
	ctx := context.Background()

	switch os.Args[1] {
	case "confirm_schema_match":
		compat, err := engine.Check(ctx)
		if err != nil {
			log.Error("schema check failed", zap.Error(err))
			os.Exit(1)
		}
		switch compat {
		case migrate.Match:
			os.Exit(exitMatch)
		case migrate.Upgradable:
			os.Exit(exitUpgradable)
		default:
			os.Exit(exitIncompatible)
		}
	case "upgrade_schema":
		if err := engine.Upgrade(ctx); err != nil {
			log.Error("schema upgrade failed", zap.Error(err))
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}
