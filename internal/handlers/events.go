package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/notifications"
)

const keepAliveInterval = 25 * time.Second

var errStreamingUnsupported = errors.New("response writer does not support flushing")

type EventHandler struct {
	Hub *notifications.Hub
}

// NewEventHandler создает SSE-обработчик событий бюджета.
func NewEventHandler(hub *notifications.Hub) *EventHandler {
	return &EventHandler{Hub: hub}
}

// Stream открывает SSE-поток событий пользователя.
func (h *EventHandler) Stream(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c, errStreamingUnsupported)
	}

	// WriteTimeout сервера не должен обрывать долгоживущий поток.
	if err := http.NewResponseController(c.Response().Writer).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.WarnContext(c.Request().Context(), "clear stream write deadline failed", "error", err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(user.ID)
	defer unsubscribe()

	slog.DebugContext(c.Request().Context(), "event stream opened", "user_id", user.ID, "subscribers", h.Hub.SubscriberCount(user.ID))

	connected := notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UTC(),
		Data:      notifications.BudgetUpdate{Version: h.Hub.Version(user.ID), Reason: "connected"},
	}
	if err := writeSSE(c, connected); err != nil {
		return nil
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.Response().Write([]byte(": keep-alive\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}
