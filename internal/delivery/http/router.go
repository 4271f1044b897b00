package http

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "pulsetrade/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	StatusHandler *StatusHandler
	JWTSecret     string
	Registry      *prometheus.Registry
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Use(echomiddleware.LoggerWithConfig(echomiddleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// polling endpoints would drown the log
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
	}))
	e.Use(echomiddleware.Recover())

	e.GET("/health", config.StatusHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.GET("/status", config.StatusHandler.Status)
	api.GET("/events/recent", config.StatusHandler.RecentEvents)
	api.POST("/auth/login", config.StatusHandler.Login)

	control := api.Group("/control", custommiddleware.Auth(config.JWTSecret))
	control.POST("/trading", config.StatusHandler.ControlTrading)
}
