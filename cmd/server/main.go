package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/scanstack-io/Scantree/internal/bootstrap"
	"github.com/scanstack-io/Scantree/internal/config"
	"github.com/scanstack-io/Scantree/internal/migrate"
	"github.com/scanstack-io/Scantree/internal/modules/handler"
	"github.com/scanstack-io/Scantree/internal/router"
	"github.com/scanstack-io/Scantree/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer telemetry.ShutdownTracing(context.Background()) //nolint:errcheck

	// The schema must be current before the service takes traffic; upgrades
	// run out of band via the schema tool.
	engine := do.MustInvoke[*migrate.Engine](inj)
	compat, err := engine.Check(context.Background())
	if err != nil {
		log.Fatal("schema compatibility check failed", zap.Error(err))
	}
	switch compat {
	case migrate.Upgradable:
		log.Fatal("schema is behind; run `scantree-schema upgrade_schema` before starting")
	case migrate.Incompatible:
		log.Fatal("stored schema version is incompatible with this build")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.NewRouter(router.RouterDeps{
		Config:           cfg,
		Log:              log,
		IngestHandler:    do.MustInvoke[*handler.IngestHandler](inj),
		ContainerHandler: do.MustInvoke[*handler.ContainerHandler](inj),
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info("listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
