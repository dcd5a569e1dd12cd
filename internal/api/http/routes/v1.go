package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hse-epd/lut-studio/internal/api/http/middleware"
	"github.com/hse-epd/lut-studio/internal/drivers"
	projecthttp "github.com/hse-epd/lut-studio/internal/projects/http"
	"github.com/hse-epd/lut-studio/internal/projects/service"
)

type V1Deps struct {
	Projects       *service.ProjectService
	Registry       *drivers.Registry
	RateLimitRPS   float64
	RateLimitBurst int
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))

	h := projecthttp.New(dep.Projects, dep.Registry)
	h.Register(api.Group("/projects"))
	h.RegisterDrivers(api.Group("/drivers"))
}
