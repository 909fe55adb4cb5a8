package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cashdash/backend/internal/models"
)

type CategoryRepository struct {
	db querier
}

// NewCategoryRepository создает репозиторий категорий.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List возвращает категории пользователя по алфавиту, query фильтрует по подстроке без учета регистра.
func (r *CategoryRepository) List(ctx context.Context, userID uuid.UUID, query string) ([]models.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM categories
		 WHERE user_id = $1 AND ($2 = '' OR name ILIKE $3)
		 ORDER BY lower(name), name`,
		userID, query, likePattern(query),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// FindByName ищет категорию по имени без учета регистра.
func (r *CategoryRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (models.Category, error) {
	var category models.Category

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM categories
		 WHERE user_id = $1 AND lower(name) = lower($2)`,
		userID, NormalizeName(name),
	).Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category, ErrNotFound
		}
		return category, err
	}

	return category, nil
}

// Create создает категорию, дубликат имени возвращает ErrConflict.
func (r *CategoryRepository) Create(ctx context.Context, userID uuid.UUID, name string) (models.Category, error) {
	var category models.Category

	name = NormalizeName(name)
	if name == "" {
		return category, ErrInvalid
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id, user_id, name, created_at`,
		userID, name,
	).Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return category, ErrConflict
		}
		return category, err
	}

	return category, nil
}

// Ensure возвращает существующую категорию или создает новую.
// Гонка параллельных вставок разрешается повторным чтением.
func (r *CategoryRepository) Ensure(ctx context.Context, userID uuid.UUID, name string) (models.Category, bool, error) {
	name = NormalizeName(name)
	if name == "" {
		return models.Category{}, false, ErrInvalid
	}

	category, err := r.FindByName(ctx, userID, name)
	if err == nil {
		return category, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return category, false, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO categories (user_id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, (lower(name))) DO NOTHING
		 RETURNING id, user_id, name, created_at`,
		userID, name,
	).Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt)
	switch {
	case err == nil:
		return category, true, nil
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		category, err = r.FindByName(ctx, userID, name)
		return category, false, err
	default:
		return category, false, err
	}
}
