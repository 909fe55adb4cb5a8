package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cashdash/backend/internal/models"
)

type BudgetRepository struct {
	db *pgxpool.Pool
}

// NewBudgetRepository создает репозиторий месячных бюджетов.
func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `b.id, b.user_id, b.category_id, c.name, b.limit_cents, b.start_date, b.created_at, b.updated_at`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var budget models.Budget
	err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &budget.CategoryName, &budget.LimitCents, &budget.StartDate, &budget.CreatedAt, &budget.UpdatedAt)
	return budget, err
}

// ListForMonth возвращает бюджеты месяца с названиями категорий.
func (r *BudgetRepository) ListForMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = $1 AND b.start_date = $2
		 ORDER BY lower(c.name), c.name`,
		userID, monthDate(monthStart),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]models.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}

	return budgets, rows.Err()
}

// FindForCategory возвращает бюджет категории на месяц.
func (r *BudgetRepository) FindForCategory(ctx context.Context, userID, categoryID uuid.UUID, monthStart time.Time) (models.Budget, error) {
	budget, err := scanBudget(r.db.QueryRow(ctx,
		`SELECT `+budgetColumns+`
		 FROM budgets b
		 JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = $1 AND b.category_id = $2 AND b.start_date = $3`,
		userID, categoryID, monthDate(monthStart),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return budget, ErrNotFound
		}
		return budget, err
	}

	return budget, nil
}

// Create создает бюджет категории на месяц. Повторный бюджет на тот же месяц возвращает ErrConflict.
func (r *BudgetRepository) Create(ctx context.Context, userID uuid.UUID, category models.Category, limitCents int64, monthStart time.Time) (models.Budget, error) {
	var budget models.Budget

	if limitCents < 0 {
		return budget, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_cents, start_date)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ON CONSTRAINT budgets_user_category_month_key DO NOTHING
		 RETURNING id, user_id, category_id, limit_cents, start_date, created_at, updated_at`,
		userID, category.ID, limitCents, monthDate(monthStart),
	).Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &budget.LimitCents, &budget.StartDate, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return budget, ErrConflict
		}
		return budget, err
	}

	budget.CategoryName = category.Name
	return budget, nil
}

// UpdateLimit меняет лимит бюджета категории на месяц.
func (r *BudgetRepository) UpdateLimit(ctx context.Context, userID, categoryID uuid.UUID, monthStart time.Time, limitCents int64) (models.Budget, error) {
	if limitCents < 0 {
		return models.Budget{}, ErrInvalid
	}

	budget, err := scanBudget(r.db.QueryRow(ctx,
		`UPDATE budgets b
		 SET limit_cents = $4, updated_at = NOW()
		 FROM categories c
		 WHERE c.id = b.category_id
		   AND b.user_id = $1 AND b.category_id = $2 AND b.start_date = $3
		 RETURNING `+budgetColumns,
		userID, categoryID, monthDate(monthStart), limitCents,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return budget, ErrNotFound
		}
		return budget, err
	}

	return budget, nil
}

// TotalForMonth возвращает сумму лимитов всех бюджетов месяца.
func (r *BudgetRepository) TotalForMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) (int64, error) {
	var total int64

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(limit_cents), 0)
		 FROM budgets
		 WHERE user_id = $1 AND start_date = $2`,
		userID, monthDate(monthStart),
	).Scan(&total)

	return total, err
}

// monthDate приводит начало месяца к календарной дате колонки start_date.
func monthDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
