package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/auth"
)

// Clock задает текущее время и зону, в которой считаются границы месяцев.
type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

// Now возвращает текущее время в зоне приложения.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	return now().In(c.location())
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

const (
	maxCategoryNameLength = 100
	maxTitleLength        = 200
)

// categoryNameMessage возвращает текст ошибки для имени категории, не прошедшего валидацию.
func categoryNameMessage(name string) string {
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return fmt.Sprintf("Category name must be at most %d characters", maxCategoryNameLength)
	}
	return "Category name is required"
}

func currentUser(c echo.Context) (auth.User, bool) {
	return auth.UserFromContext(c)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

// serverError логирует причину и отдает клиенту общее сообщение.
func serverError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
