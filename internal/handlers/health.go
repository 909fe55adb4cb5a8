package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health возвращает статус сервиса; при недоступной базе отвечает 503.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "error", err)
				return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			}
		}

		return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	}
}
