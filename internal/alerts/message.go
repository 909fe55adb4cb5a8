// Package alerts публикует уведомления о превышении бюджетов во внешнюю очередь.
package alerts

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"example.com/cashdash/backend/internal/stats"
)

// BudgetAlert сообщение о переходе бюджета категории в статус near или over.
type BudgetAlert struct {
	UserID     uuid.UUID    `json:"user_id"`
	CategoryID uuid.UUID    `json:"category_id"`
	Category   string       `json:"category"`
	Month      string       `json:"month"`
	Status     stats.Status `json:"status"`
	SpentCents int64        `json:"spent_cents"`
	LimitCents int64        `json:"limit_cents"`
	Percent    int          `json:"percent"`
	Timestamp  time.Time    `json:"timestamp"`
}

// NewBudgetAlert собирает сообщение из результата сравнения с бюджетом.
func NewBudgetAlert(userID uuid.UUID, monthStart time.Time, status stats.BudgetStatus) BudgetAlert {
	return BudgetAlert{
		UserID:     userID,
		CategoryID: status.CategoryID,
		Category:   status.CategoryName,
		Month:      monthStart.Format("2006-01"),
		Status:     status.Status,
		SpentCents: status.SpentCents,
		LimitCents: status.LimitCents,
		Percent:    status.Percent,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON сериализует сообщение.
func (a BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

