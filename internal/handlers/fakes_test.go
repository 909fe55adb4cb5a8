package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"example.com/cashdash/backend/internal/achievements"
	"example.com/cashdash/backend/internal/alerts"
	"example.com/cashdash/backend/internal/auth"
	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/repository"
)

var testNow = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("connection refused")

type testValidator struct {
	validate *validator.Validate
}

func (v testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// memDB хранилище в памяти, разделяемое фейковыми репозиториями.
type memDB struct {
	mu         sync.Mutex
	profiles   map[uuid.UUID]models.Profile
	categories []models.Category
	budgets    []models.Budget
	expenses   []models.Expense
	fail       error
}

func newMemDB() *memDB {
	return &memDB{profiles: make(map[uuid.UUID]models.Profile)}
}

func (db *memDB) categoryName(id uuid.UUID) string {
	for _, category := range db.categories {
		if category.ID == id {
			return category.Name
		}
	}
	return ""
}

type fakeProfiles struct{ db *memDB }

func (f fakeProfiles) Get(_ context.Context, userID uuid.UUID) (models.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return models.Profile{}, f.db.fail
	}
	profile, ok := f.db.profiles[userID]
	if !ok {
		return profile, repository.ErrNotFound
	}
	return profile, nil
}

func (f fakeProfiles) Ensure(_ context.Context, userID uuid.UUID, username *string) (models.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return models.Profile{}, f.db.fail
	}
	profile, ok := f.db.profiles[userID]
	if !ok {
		profile = models.Profile{UserID: userID, Currency: models.DefaultCurrency, CreatedAt: testNow, UpdatedAt: testNow}
	}
	if profile.Username == nil {
		profile.Username = username
	}
	f.db.profiles[userID] = profile
	return profile, nil
}

func (f fakeProfiles) UpdateCurrency(_ context.Context, userID uuid.UUID, currency string) (models.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	profile, ok := f.db.profiles[userID]
	if !ok {
		return profile, repository.ErrNotFound
	}
	profile.Currency = currency
	f.db.profiles[userID] = profile
	return profile, nil
}

func (f fakeProfiles) RecordActivity(_ context.Context, userID uuid.UUID, today time.Time) (models.Profile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	profile, ok := f.db.profiles[userID]
	if !ok {
		profile = models.Profile{UserID: userID, Currency: models.DefaultCurrency}
	}
	profile.StreakCurrent = achievements.NextStreak(profile.LastActivityDate, profile.StreakCurrent, today)
	profile.XP += achievements.XPPerExpense
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	profile.LastActivityDate = &day
	f.db.profiles[userID] = profile
	return profile, nil
}

type fakeCategories struct{ db *memDB }

func (f fakeCategories) List(_ context.Context, userID uuid.UUID, query string) ([]models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return nil, f.db.fail
	}
	out := make([]models.Category, 0)
	for _, category := range f.db.categories {
		if category.UserID != userID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(category.Name), strings.ToLower(query)) {
			continue
		}
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (f fakeCategories) FindByName(_ context.Context, userID uuid.UUID, name string) (models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	return f.find(userID, name)
}

func (f fakeCategories) find(userID uuid.UUID, name string) (models.Category, error) {
	for _, category := range f.db.categories {
		if category.UserID == userID && strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return models.Category{}, repository.ErrNotFound
}

func (f fakeCategories) Create(_ context.Context, userID uuid.UUID, name string) (models.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if _, err := f.find(userID, name); err == nil {
		return models.Category{}, repository.ErrConflict
	}
	category := models.Category{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: testNow}
	f.db.categories = append(f.db.categories, category)
	return category, nil
}

func (f fakeCategories) Ensure(_ context.Context, userID uuid.UUID, name string) (models.Category, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return models.Category{}, false, f.db.fail
	}
	if category, err := f.find(userID, name); err == nil {
		return category, false, nil
	}
	category := models.Category{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: testNow}
	f.db.categories = append(f.db.categories, category)
	return category, true, nil
}

type fakeBudgets struct{ db *memDB }

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (f fakeBudgets) ListForMonth(_ context.Context, userID uuid.UUID, monthStart time.Time) ([]models.Budget, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return nil, f.db.fail
	}
	out := make([]models.Budget, 0)
	for _, budget := range f.db.budgets {
		if budget.UserID == userID && sameMonth(budget.StartDate, monthStart) {
			budget.CategoryName = f.db.categoryName(budget.CategoryID)
			out = append(out, budget)
		}
	}
	return out, nil
}

func (f fakeBudgets) FindForCategory(_ context.Context, userID, categoryID uuid.UUID, monthStart time.Time) (models.Budget, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, budget := range f.db.budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID && sameMonth(budget.StartDate, monthStart) {
			budget.CategoryName = f.db.categoryName(budget.CategoryID)
			return budget, nil
		}
	}
	return models.Budget{}, repository.ErrNotFound
}

func (f fakeBudgets) Create(_ context.Context, userID uuid.UUID, category models.Category, limitCents int64, monthStart time.Time) (models.Budget, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for _, budget := range f.db.budgets {
		if budget.UserID == userID && budget.CategoryID == category.ID && sameMonth(budget.StartDate, monthStart) {
			return models.Budget{}, repository.ErrConflict
		}
	}
	budget := models.Budget{
		ID:           uuid.New(),
		UserID:       userID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		LimitCents:   limitCents,
		StartDate:    monthStart,
	}
	f.db.budgets = append(f.db.budgets, budget)
	return budget, nil
}

func (f fakeBudgets) UpdateLimit(_ context.Context, userID, categoryID uuid.UUID, monthStart time.Time, limitCents int64) (models.Budget, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	for i, budget := range f.db.budgets {
		if budget.UserID == userID && budget.CategoryID == categoryID && sameMonth(budget.StartDate, monthStart) {
			f.db.budgets[i].LimitCents = limitCents
			return f.db.budgets[i], nil
		}
	}
	return models.Budget{}, repository.ErrNotFound
}

func (f fakeBudgets) TotalForMonth(_ context.Context, userID uuid.UUID, monthStart time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var total int64
	for _, budget := range f.db.budgets {
		if budget.UserID == userID && sameMonth(budget.StartDate, monthStart) {
			total += budget.LimitCents
		}
	}
	return total, nil
}

type fakeExpenses struct{ db *memDB }

func (f fakeExpenses) Create(_ context.Context, userID uuid.UUID, category models.Category, title string, amountCents int64, occurredAt time.Time) (models.Expense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	expense := models.Expense{
		ID:           uuid.New(),
		UserID:       userID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Title:        title,
		AmountCents:  amountCents,
		OccurredAt:   occurredAt,
		CreatedAt:    testNow,
	}
	f.db.expenses = append(f.db.expenses, expense)
	return expense, nil
}

func (f fakeExpenses) ListBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	if f.db.fail != nil {
		return nil, f.db.fail
	}
	out := make([]models.Expense, 0)
	for _, expense := range f.db.expenses {
		if expense.UserID == userID && !expense.OccurredAt.Before(from) && expense.OccurredAt.Before(to) {
			expense.CategoryName = f.db.categoryName(expense.CategoryID)
			out = append(out, expense)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (f fakeExpenses) SumForCategory(_ context.Context, userID, categoryID uuid.UUID, from, to time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var total int64
	for _, expense := range f.db.expenses {
		if expense.UserID == userID && expense.CategoryID == categoryID && !expense.OccurredAt.Before(from) && expense.OccurredAt.Before(to) {
			total += expense.AmountCents
		}
	}
	return total, nil
}

func (f fakeExpenses) ActivityStats(_ context.Context, userID uuid.UUID, loc *time.Location) (models.ActivityStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	var stats models.ActivityStats
	used := make(map[uuid.UUID]struct{})
	for _, expense := range f.db.expenses {
		if expense.UserID != userID {
			continue
		}
		local := expense.OccurredAt.In(loc)
		stats.TransactionCount++
		if local.Hour() < 8 {
			stats.EarlyTransactions++
		}
		if local.Hour() >= 22 {
			stats.LateTransactions++
		}
		if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
			stats.WeekendCount++
		}
		used[expense.CategoryID] = struct{}{}
	}
	stats.CategoriesUsed = len(used)
	for _, category := range f.db.categories {
		if category.UserID == userID {
			stats.CategoriesCreated++
		}
	}
	return stats, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	alerts []alerts.BudgetAlert
}

func (p *recordingPublisher) PublishBudgetAlert(_ context.Context, alert alerts.BudgetAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) sent() []alerts.BudgetAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]alerts.BudgetAlert(nil), p.alerts...)
}

// fixture собирает обработчики поверх общего хранилища в памяти.
type fixture struct {
	db        *memDB
	user      auth.User
	clock     Clock
	publisher *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		db:        newMemDB(),
		user:      auth.User{ID: uuid.New(), Email: "leo@example.com", Username: "leo"},
		clock:     Clock{Location: time.UTC, NowFunc: func() time.Time { return testNow }},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) stores() (fakeProfiles, fakeCategories, fakeBudgets, fakeExpenses) {
	return fakeProfiles{f.db}, fakeCategories{f.db}, fakeBudgets{f.db}, fakeExpenses{f.db}
}

func (f *fixture) addCategory(name string) models.Category {
	category := models.Category{ID: uuid.New(), UserID: f.user.ID, Name: name, CreatedAt: testNow}
	f.db.categories = append(f.db.categories, category)
	return category
}

func (f *fixture) addBudget(category models.Category, limitCents int64) {
	f.db.budgets = append(f.db.budgets, models.Budget{
		ID:         uuid.New(),
		UserID:     f.user.ID,
		CategoryID: category.ID,
		LimitCents: limitCents,
		StartDate:  time.Date(testNow.Year(), testNow.Month(), 1, 0, 0, 0, 0, time.UTC),
	})
}

func (f *fixture) addExpense(category models.Category, amountCents int64, occurredAt time.Time) {
	f.db.expenses = append(f.db.expenses, models.Expense{
		ID:          uuid.New(),
		UserID:      f.user.ID,
		CategoryID:  category.ID,
		Title:       category.Name,
		AmountCents: amountCents,
		OccurredAt:  occurredAt,
		CreatedAt:   occurredAt,
	})
}

// request выполняет обработчик от имени пользователя фикстуры; nil user означает анонимный запрос.
func request(t *testing.T, handler echo.HandlerFunc, method, target string, body interface{}, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = testValidator{validate: validator.New()}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		auth.SetUser(c, *user)
	}

	require.NoError(t, handler(c))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
