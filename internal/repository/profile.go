package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cashdash/backend/internal/achievements"
	"example.com/cashdash/backend/internal/models"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository создает репозиторий профилей.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, username, currency, xp, streak_current, last_activity_date, created_at, updated_at`

func scanProfile(row pgx.Row) (models.Profile, error) {
	var profile models.Profile
	err := row.Scan(&profile.UserID, &profile.Username, &profile.Currency, &profile.XP, &profile.StreakCurrent, &profile.LastActivityDate, &profile.CreatedAt, &profile.UpdatedAt)
	return profile, err
}

// Get возвращает профиль пользователя.
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	return profile, nil
}

// Ensure создает профиль со значениями по умолчанию, если его нет.
// Существующий профиль без имени получает username.
func (r *ProfileRepository) Ensure(ctx context.Context, userID uuid.UUID, username *string) (models.Profile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, username, currency)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET username = COALESCE(profiles.username, EXCLUDED.username),
		     updated_at = CASE WHEN profiles.username IS NULL AND EXCLUDED.username IS NOT NULL
		                       THEN NOW() ELSE profiles.updated_at END
		 RETURNING `+profileColumns,
		userID, username, models.DefaultCurrency,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return r.Get(ctx, userID)
		}
		return profile, err
	}

	return profile, nil
}

// UpdateCurrency меняет валюту отображения.
func (r *ProfileRepository) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (models.Profile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET currency = $2, updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		userID, currency,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	return profile, nil
}

// RecordActivity начисляет опыт за трату и обновляет серию дней активности.
func (r *ProfileRepository) RecordActivity(ctx context.Context, userID uuid.UUID, today time.Time) (models.Profile, error) {
	var profile models.Profile

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return profile, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (user_id, currency) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, models.DefaultCurrency,
	)
	if err != nil {
		return profile, err
	}

	profile, err = scanProfile(tx.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`,
		userID,
	))
	if err != nil {
		return profile, err
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	streak := achievements.NextStreak(profile.LastActivityDate, profile.StreakCurrent, day)

	profile, err = scanProfile(tx.QueryRow(ctx,
		`UPDATE profiles
		 SET xp = xp + $2,
		     streak_current = $3,
		     last_activity_date = GREATEST(COALESCE(last_activity_date, $4::date), $4::date),
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		userID, achievements.XPPerExpense, streak, day,
	))
	if err != nil {
		return profile, err
	}

	if err := tx.Commit(ctx); err != nil {
		return profile, err
	}

	return profile, nil
}
