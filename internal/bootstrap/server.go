package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/mohammadpnp/client-import/internal/config"
	httpecho "github.com/mohammadpnp/client-import/internal/interfaces/http/echo"
)

const serviceName = "client-import"

func NewHTTPServer(cfg config.Config, infra Infrastructure, logger *zap.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(otelecho.Middleware(serviceName))
	server.Use(requestLogger(logger))
	server.Use(middleware.BodyLimit(cfg.BodyLimit))

	useCases := NewUseCases(infra, cfg, logger)
	clientImportHandler := httpecho.NewClientImportHandler(useCases.Preview, useCases.Import, cfg.Import.MaxRows, logger.Named("http"))

	httpecho.RegisterRoutes(server, clientImportHandler)

	server.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		status := http.StatusOK
		if infra.Pool != nil {
			if err := infra.Pool.Ping(ctx); err != nil {
				checks["database"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if infra.Redis != nil {
			checks["redis"] = "ok"
			if err := infra.Redis.Ping(ctx).Err(); err != nil {
				// previews still work without the cache
				checks["redis"] = err.Error()
			}
		}
		if status == http.StatusOK {
			checks["status"] = "ok"
		} else {
			checks["status"] = "degraded"
		}
		return c.JSON(status, checks)
	})

	if cfg.Metrics.Enabled {
		server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return server
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("user_id", c.Request().Header.Get(httpecho.HeaderUserID)),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
