package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCurrency     = "USD"
	UnknownCategoryName = "Unknown"
)

type Profile struct {
	UserID           uuid.UUID  `json:"user_id"`
	Username         *string    `json:"username,omitempty"`
	Currency         string     `json:"currency"`
	XP               int        `json:"xp"`
	StreakCurrent    int        `json:"streak_current"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Budget struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	LimitCents   int64     `json:"limit_cents"`
	StartDate    time.Time `json:"start_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Expense struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Title        string    `json:"title"`
	AmountCents  int64     `json:"amount_cents"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ActivityStats агрегированные показатели активности пользователя для достижений.
type ActivityStats struct {
	TransactionCount  int
	EarlyTransactions int
	LateTransactions  int
	WeekendCount      int
	CategoriesUsed    int
	CategoriesCreated int
}
