package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cashdash/backend/internal/models"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository создает репозиторий трат.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create сохраняет трату в категории.
func (r *ExpenseRepository) Create(ctx context.Context, userID uuid.UUID, category models.Category, title string, amountCents int64, occurredAt time.Time) (models.Expense, error) {
	var expense models.Expense

	if amountCents <= 0 {
		return expense, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO expenses (user_id, category_id, title, amount_cents, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, category_id, title, amount_cents, occurred_at, created_at`,
		userID, category.ID, title, amountCents, occurredAt,
	).Scan(&expense.ID, &expense.UserID, &expense.CategoryID, &expense.Title, &expense.AmountCents, &expense.OccurredAt, &expense.CreatedAt)
	if err != nil {
		return expense, err
	}

	expense.CategoryName = category.Name
	return expense, nil
}

// ListBetween возвращает траты в полуинтервале [from, to), новые первыми.
func (r *ExpenseRepository) ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.user_id, e.category_id, COALESCE(c.name, ''), e.title, e.amount_cents, e.occurred_at, e.created_at
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = $1 AND e.occurred_at >= $2 AND e.occurred_at < $3
		 ORDER BY e.occurred_at DESC, e.created_at DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(&expense.ID, &expense.UserID, &expense.CategoryID, &expense.CategoryName, &expense.Title, &expense.AmountCents, &expense.OccurredAt, &expense.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// SumForCategory возвращает сумму трат категории в полуинтервале [from, to).
func (r *ExpenseRepository) SumForCategory(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (int64, error) {
	var total int64

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM expenses
		 WHERE user_id = $1 AND category_id = $2 AND occurred_at >= $3 AND occurred_at < $4`,
		userID, categoryID, from, to,
	).Scan(&total)

	return total, err
}

// ActivityStats считает показатели активности для достижений во временной зоне loc.
func (r *ExpenseRepository) ActivityStats(ctx context.Context, userID uuid.UUID, loc *time.Location) (models.ActivityStats, error) {
	var stats models.ActivityStats

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM occurred_at AT TIME ZONE $2) < 8),
		        COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM occurred_at AT TIME ZONE $2) >= 22),
		        COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM occurred_at AT TIME ZONE $2) IN (6, 7)),
		        COUNT(DISTINCT category_id)
		 FROM expenses
		 WHERE user_id = $1`,
		userID, loc.String(),
	).Scan(&stats.TransactionCount, &stats.EarlyTransactions, &stats.LateTransactions, &stats.WeekendCount, &stats.CategoriesUsed)
	if err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = $1`,
		userID,
	).Scan(&stats.CategoriesCreated)

	return stats, err
}
