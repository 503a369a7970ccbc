package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scanstack-io/Scantree/internal/config"
	"github.com/scanstack-io/Scantree/internal/middleware"
	"github.com/scanstack-io/Scantree/internal/modules/handler"
	"github.com/scanstack-io/Scantree/internal/modules/serializer"
)

type RouterDeps struct {
	Config           *config.Config
	Log              *zap.Logger
	IngestHandler    *handler.IngestHandler
	ContainerHandler *handler.ContainerHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.POST("/ingest", d.IngestHandler.Ingest)
		v1.GET("/containers/:type/:id", d.ContainerHandler.Get)
	}

	return r
}
