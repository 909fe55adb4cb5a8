package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/stats"
)

type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	Ensure(ctx context.Context, userID uuid.UUID, username *string) (models.Profile, error)
	UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (models.Profile, error)
	RecordActivity(ctx context.Context, userID uuid.UUID, today time.Time) (models.Profile, error)
}

type CategoryStore interface {
	List(ctx context.Context, userID uuid.UUID, query string) ([]models.Category, error)
	FindByName(ctx context.Context, userID uuid.UUID, name string) (models.Category, error)
	Create(ctx context.Context, userID uuid.UUID, name string) (models.Category, error)
	Ensure(ctx context.Context, userID uuid.UUID, name string) (models.Category, bool, error)
}

type BudgetStore interface {
	ListForMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) ([]models.Budget, error)
	FindForCategory(ctx context.Context, userID, categoryID uuid.UUID, monthStart time.Time) (models.Budget, error)
	Create(ctx context.Context, userID uuid.UUID, category models.Category, limitCents int64, monthStart time.Time) (models.Budget, error)
	UpdateLimit(ctx context.Context, userID, categoryID uuid.UUID, monthStart time.Time, limitCents int64) (models.Budget, error)
	TotalForMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) (int64, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, userID uuid.UUID, category models.Category, title string, amountCents int64, occurredAt time.Time) (models.Expense, error)
	ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error)
	SumForCategory(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (int64, error)
	ActivityStats(ctx context.Context, userID uuid.UUID, loc *time.Location) (models.ActivityStats, error)
}

// toRecords переводит строки трат во входные данные агрегации.
func toRecords(expenses []models.Expense) []stats.ExpenseRecord {
	records := make([]stats.ExpenseRecord, 0, len(expenses))
	for _, expense := range expenses {
		records = append(records, stats.ExpenseRecord{
			CategoryID:   expense.CategoryID,
			CategoryName: expense.CategoryName,
			AmountCents:  expense.AmountCents,
			OccurredAt:   expense.OccurredAt,
		})
	}
	return records
}
