package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"github.com/Domenick1991/busbooking/internal/service/support"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Guards are the per-route middlewares handlers attach to protected endpoints.
// Staff assumes Auth already ran.
type Guards struct {
	Auth  gin.HandlerFunc
	Staff gin.HandlerFunc
}

// HealthCheck is a named dependency check reported by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type RouterDeps struct {
	Bookings booking.BookingUseCase
	Catalog  catalog.CatalogUseCase
	Support  support.SupportUseCase
	Tokens   TokenValidator
	Health   []HealthCheck
}

func NewRouter(cfg config.HTTPConfig, deps RouterDeps, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), corsMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", healthz(deps.Health))

	if cfg.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/busbooking.swagger.json"),
		)))
	}

	guards := Guards{Auth: AuthMiddleware(deps.Tokens), Staff: RequireStaff()}
	api := router.Group("/api")
	NewBookingHandler(deps.Bookings).Register(api.Group("/bookings"), guards)
	NewRouteHandler(deps.Catalog).Register(api.Group("/routes"), guards)
	NewBusHandler(deps.Catalog).Register(api.Group("/buses"), guards)
	NewScheduleHandler(deps.Catalog).Register(api.Group("/schedules"), guards)
	NewSupportHandler(deps.Support).Register(api.Group("/support"), guards)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func healthz(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				loggerFrom(c).Warn("health check failed", zap.String("check", hc.Name), zap.Error(err))
				report[hc.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			report[hc.Name] = "ok"
		}
		report["status"] = http.StatusText(status)
		c.JSON(status, report)
	}
}
