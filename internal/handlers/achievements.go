package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"example.com/cashdash/backend/internal/achievements"
	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/repository"
)

type AchievementHandler struct {
	Profiles ProfileStore
	Expenses ExpenseStore
	Clock    Clock
}

// NewAchievementHandler создает обработчик достижений.
func NewAchievementHandler(profiles ProfileStore, expenses ExpenseStore, clock Clock) *AchievementHandler {
	return &AchievementHandler{Profiles: profiles, Expenses: expenses, Clock: clock}
}

type AchievementsResponse struct {
	XP            int `json:"xp"`
	StreakCurrent int `json:"streak_current"`
	achievements.Summary
}

// List возвращает прогресс всех достижений пользователя.
func (h *AchievementHandler) List(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var (
		profile  models.Profile
		activity models.ActivityStats
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		profile, err = h.Profiles.Get(ctx, user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			profile, err = h.Profiles.Ensure(ctx, user.ID, optionalString(user.Username))
		}
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = h.Expenses.ActivityStats(ctx, user.ID, h.Clock.location())
		return err
	})
	if err := g.Wait(); err != nil {
		return serverError(c, err)
	}

	streak := achievements.ActiveStreak(profile.LastActivityDate, profile.StreakCurrent, h.Clock.Now())

	return c.JSON(http.StatusOK, AchievementsResponse{
		XP:            profile.XP,
		StreakCurrent: streak,
		Summary:       achievements.Evaluate(achievements.Input{Activity: activity, Streak: streak}),
	})
}
