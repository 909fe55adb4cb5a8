package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/repository"
)

type ProfileHandler struct {
	Profiles ProfileStore
}

// NewProfileHandler создает обработчик профиля.
func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

type UpdateProfileRequest struct {
	Currency string `json:"currency" validate:"required,iso4217"`
}

type EnsureProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,max=50"`
}

type ProfileResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         *string   `json:"username"`
	Currency         string    `json:"currency"`
	XP               int       `json:"xp"`
	StreakCurrent    int       `json:"streak_current"`
	LastActivityDate *string   `json:"last_activity_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Get возвращает профиль, создавая его при первом обращении.
func (h *ProfileHandler) Get(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	profile, err := h.Profiles.Get(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		profile, err = h.Profiles.Ensure(ctx, user.ID, optionalString(user.Username))
	}
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Update меняет валюту профиля.
func (h *ProfileHandler) Update(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "currency must be an ISO 4217 code")
	}

	ctx := c.Request().Context()
	if _, err := h.Profiles.Ensure(ctx, user.ID, optionalString(user.Username)); err != nil {
		return serverError(c, err)
	}

	profile, err := h.Profiles.UpdateCurrency(ctx, user.ID, req.Currency)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "profile not found")
		}
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Ensure идемпотентно создает профиль со значениями по умолчанию.
func (h *ProfileHandler) Ensure(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req EnsureProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "username is too long")
	}

	username := optionalString(user.Username)
	if req.Username != nil {
		if requested := optionalString(*req.Username); requested != nil {
			username = requested
		}
	}

	profile, err := h.Profiles.Ensure(c.Request().Context(), user.ID, username)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(profile models.Profile) ProfileResponse {
	response := ProfileResponse{
		UserID:        profile.UserID,
		Username:      profile.Username,
		Currency:      strings.TrimSpace(profile.Currency),
		XP:            profile.XP,
		StreakCurrent: profile.StreakCurrent,
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
	}
	if profile.LastActivityDate != nil {
		date := profile.LastActivityDate.Format(time.DateOnly)
		response.LastActivityDate = &date
	}
	return response
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
