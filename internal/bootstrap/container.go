package bootstrap

import (
	"crypto/tls"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scanstack-io/Scantree/internal/config"
	"github.com/scanstack-io/Scantree/internal/infra/cache"
	"github.com/scanstack-io/Scantree/internal/infra/db"
	"github.com/scanstack-io/Scantree/internal/infra/logger"
	mq "github.com/scanstack-io/Scantree/internal/infra/queue"
	"github.com/scanstack-io/Scantree/internal/migrate"
	"github.com/scanstack-io/Scantree/internal/modules/handler"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"github.com/scanstack-io/Scantree/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(
				&model.Group{},
				&model.Project{},
				&model.Session{},
				&model.Acquisition{},
				&model.Job{},
				&model.SchemaVersion{},
			); err != nil {
				return nil, err
			}
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}
		if err := EnsureDefaultGroupsExist(d, log); err != nil {
			return nil, err
		}
		return d, nil
	})

	// Redis (optional container cache)
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// RabbitMQ connection (optional job announcements)
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.RabbitMQ.Enabled {
			return nil, nil
		}
		useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
		if useTLS {
			tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
			url := cfg.RabbitMQ.URL
			if strings.HasPrefix(url, "amqp://") {
				url = strings.Replace(url, "amqp://", "amqps://", 1)
			}
			return amqp.DialTLS(url, tlsConfig)
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// RabbitMQ publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// repos
	do.Provide(inj, func(i *do.Injector) (repo.GroupRepo, error) {
		return repo.NewGroupRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SessionRepo, error) {
		return repo.NewSessionRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.AcquisitionRepo, error) {
		return repo.NewAcquisitionRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ContainerRepo, error) {
		return repo.NewContainerRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.JobRepo, error) {
		return repo.NewJobRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// services
	do.Provide(inj, func(i *do.Injector) (service.GroupProjectMatcher, error) {
		return service.NewGroupProjectMatcher(
			do.MustInvoke[repo.GroupRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.SubjectIdentityResolver, error) {
		return service.NewSubjectIdentityResolver(
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.ReferenceResolver, error) {
		return service.NewReferenceResolver(
			do.MustInvoke[repo.ContainerRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.JobDispatcher, error) {
		return service.NewJobDispatcher(
			do.MustInvoke[repo.JobRepo](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.HierarchyReconciler, error) {
		return service.NewHierarchyReconciler(
			do.MustInvoke[service.GroupProjectMatcher](i),
			do.MustInvoke[*service.SubjectIdentityResolver](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[repo.AcquisitionRepo](i),
			do.MustInvoke[*service.JobDispatcher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// migration engine
	do.Provide(inj, func(i *do.Injector) (*migrate.Engine, error) {
		d := do.MustInvoke[*gorm.DB](i)
		return migrate.New(d, migrate.NewGormVersionStore(d), do.MustInvoke[*zap.Logger](i)), nil
	})

	// handlers
	do.Provide(inj, func(i *do.Injector) (*handler.IngestHandler, error) {
		return handler.NewIngestHandler(
			do.MustInvoke[*service.HierarchyReconciler](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ContainerHandler, error) {
		return handler.NewContainerHandler(
			do.MustInvoke[*service.ReferenceResolver](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	return inj
}
