package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpapi "github.com/hse-epd/lut-studio/internal/api/http"
	"github.com/hse-epd/lut-studio/internal/api/http/middleware"
	"github.com/hse-epd/lut-studio/internal/api/http/routes"
	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/kvstore"
	"github.com/hse-epd/lut-studio/internal/projects/service"
	"github.com/hse-epd/lut-studio/internal/telemetry"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Backend        string
	Store          kvstore.Store
	Projects       *service.ProjectService
	Registry       *drivers.Registry
	Logger         zerolog.Logger
	Collector      telemetry.Collector
	Gatherer       prometheus.Gatherer
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger, dep.Collector))
	r.Use(middleware.CORS(dep.CORSOrigins))

	var pinger kvstore.Pinger
	if p, ok := dep.Store.(kvstore.Pinger); ok {
		pinger = p
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Backend, pinger)
	healthHandler.RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	routes.RegisterV1(r, routes.V1Deps{
		Projects:       dep.Projects,
		Registry:       dep.Registry,
		RateLimitRPS:   dep.RateLimitRPS,
		RateLimitBurst: dep.RateLimitBurst,
	})

	return r
}
