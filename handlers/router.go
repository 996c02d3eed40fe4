package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups every REST handler mounted on the API router.
type Handlers struct {
	API        *APIHandler
	Datacenter *DatacenterHandler
	Alerts     *AlertHandler
}

// NewRouter builds the echo instance serving the /api routes.
func NewRouter(h Handlers, logger *slog.Logger) *echo.Echo {
	SetErrorLogger(logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(corsMiddleware)
	e.Use(loggingMiddleware(logger.With("component", "http")))

	api := e.Group("/api")

	// Health check
	api.GET("/health", h.API.HealthCheck)

	// Datacenter assets and telemetry
	dc := api.Group("/datacenter")
	dc.POST("", h.Datacenter.CreateAsset)
	dc.GET("", h.Datacenter.ListAssets)
	dc.GET("/health/overview", h.Datacenter.HealthOverview)
	dc.GET("/health/by-location", h.Datacenter.HealthByLocation)
	dc.GET("/health/assets", h.Datacenter.AssetHealth)
	dc.GET("/:id", h.Datacenter.GetAsset)
	dc.POST("/:datacenterId/reading", h.Datacenter.AddReading)

	// Alerts
	alerts := api.Group("/alerts")
	alerts.GET("", h.Alerts.ListAlerts)
	alerts.GET("/active", h.Alerts.ListActiveAlerts)
	alerts.POST("/test", h.Alerts.CreateTestAlert)
	alerts.POST("/test/random", h.Alerts.CreateRandomTestAlert)
	alerts.PATCH("/:id", h.Alerts.UpdateAlert)
	alerts.PATCH("/:id/read", h.Alerts.MarkAsRead)
	alerts.PATCH("/:id/acknowledge", h.Alerts.Acknowledge)
	alerts.PATCH("/:id/resolve", h.Alerts.Resolve)

	return e
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Response().Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}
		return next(c)
	}
}

func loggingMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.Info("Request handled",
				"method", req.Method,
				"uri", req.RequestURI,
				"remote", req.RemoteAddr,
				"status", c.Response().Status,
				"duration", time.Since(start))
			return nil
		}
	}
}
