// Package httpapi is the presentation adapter: it maps the chain workflow
// onto HTTP routes and owns nothing beyond translation and transport.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Rusith21/Autism-parent-app/internal/httpapi/handlers"
	"github.com/Rusith21/Autism-parent-app/internal/httpapi/middleware"
	"github.com/Rusith21/Autism-parent-app/internal/observability"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

type RouterConfig struct {
	ChainHandler   *handlers.ChainHandler
	JournalHandler *handlers.JournalHandler
	HealthHandler  *handlers.HealthHandler

	Log     *logger.Logger
	Metrics *observability.Metrics

	// TracingService names the otelgin span source; empty disables spans.
	TracingService string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(middleware.AttachTraceContext())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Healthz)
		r.GET("/readyz", cfg.HealthHandler.Readyz)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		if cfg.ChainHandler != nil {
			api.GET("/chain", cfg.ChainHandler.GetChain)
			api.POST("/chain/finish", cfg.ChainHandler.FinishActivity)
			api.POST("/chain/reset", cfg.ChainHandler.ResetChain)
		}
		if cfg.JournalHandler != nil {
			api.GET("/journal", cfg.JournalHandler.Recent)
		}
	}

	return r
}
