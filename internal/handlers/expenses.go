package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/alerts"
	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/money"
	"example.com/cashdash/backend/internal/notifications"
	"example.com/cashdash/backend/internal/repository"
	"example.com/cashdash/backend/internal/stats"
)

const (
	recentDays     = 7
	trailingMonths = 12
)

type ExpenseHandler struct {
	Categories CategoryStore
	Budgets    BudgetStore
	Expenses   ExpenseStore
	Profiles   ProfileStore
	Notifier   *notifications.Hub
	Alerts     alerts.Publisher
	Clock      Clock
}

// NewExpenseHandler создает обработчик трат.
func NewExpenseHandler(categories CategoryStore, budgets BudgetStore, expenses ExpenseStore, profiles ProfileStore, notifier *notifications.Hub, publisher alerts.Publisher, clock Clock) *ExpenseHandler {
	if publisher == nil {
		publisher = alerts.Noop{}
	}
	return &ExpenseHandler{
		Categories: categories,
		Budgets:    budgets,
		Expenses:   expenses,
		Profiles:   profiles,
		Notifier:   notifier,
		Alerts:     publisher,
		Clock:      clock,
	}
}

type CreateExpenseRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	AmountCents  int64      `json:"amount_cents" validate:"gt=0"`
	CategoryName string     `json:"categoryName" validate:"required,max=100"`
	OccurredAt   *time.Time `json:"occurred_at"`
}

type ExpenseResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	AmountCents  int64     `json:"amount_cents"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type MonthlyExpense struct {
	Month  string  `json:"month"`
	Year   int     `json:"year"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Create сохраняет трату, создавая категорию без учета регистра, и начисляет опыт.
func (h *ExpenseHandler) Create(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.CategoryName = repository.NormalizeName(req.CategoryName)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(req))
	}

	now := h.Clock.Now()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	ctx := c.Request().Context()
	category, _, err := h.Categories.Ensure(ctx, user.ID, req.CategoryName)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "categoryName is required")
		}
		return serverError(c, err)
	}

	expense, err := h.Expenses.Create(ctx, user.ID, category, req.Title, req.AmountCents, occurredAt)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "amount_cents must be a positive integer")
		}
		return serverError(c, err)
	}

	if _, err := h.Profiles.RecordActivity(ctx, user.ID, now); err != nil {
		slog.WarnContext(ctx, "record activity failed", "user_id", user.ID, "error", err)
	}

	if err := h.checkBudget(ctx, user.ID, expense); err != nil {
		slog.WarnContext(ctx, "budget alert check failed", "user_id", user.ID, "category", category.Name, "error", err)
	}

	if h.Notifier != nil {
		h.Notifier.BudgetUpdated(user.ID, "expense_created", category.Name)
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// ByCategory возвращает траты текущего месяца по категориям.
func (h *ExpenseHandler) ByCategory(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	window := stats.MonthWindow(h.Clock.Now(), h.Clock.location())
	expenses, err := h.Expenses.ListBetween(c.Request().Context(), user.ID, window.Start, window.End)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, stats.ByCategory(toRecords(expenses)))
}

// Recent возвращает траты за последние семь дней, новые первыми.
func (h *ExpenseHandler) Recent(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	now := h.Clock.Now()
	window := stats.TrailingDays(now, recentDays)
	expenses, err := h.Expenses.ListBetween(c.Request().Context(), user.ID, window.Start, window.End.Add(time.Second))
	if err != nil {
		return serverError(c, err)
	}

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		response = append(response, toExpenseResponse(expense))
	}

	return c.JSON(http.StatusOK, response)
}

// Monthly возвращает суммы трат за последние двенадцать месяцев в основных единицах.
func (h *ExpenseHandler) Monthly(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	loc := h.Clock.location()
	window := stats.TrailingMonths(h.Clock.Now(), loc, trailingMonths)
	expenses, err := h.Expenses.ListBetween(c.Request().Context(), user.ID, window.Start, window.End)
	if err != nil {
		return serverError(c, err)
	}

	months := stats.Monthly(toRecords(expenses), loc)
	response := make([]MonthlyExpense, 0, len(months))
	for _, month := range months {
		response = append(response, MonthlyExpense{
			Month:  month.Label(),
			Year:   month.Year,
			Label:  fmt.Sprintf("%s %d", month.Label(), month.Year),
			Amount: money.ToMajor(month.TotalCents),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// checkBudget сравнивает траты категории до и после новой траты и
// отправляет алерт, если статус бюджета ухудшился до near или over.
func (h *ExpenseHandler) checkBudget(ctx context.Context, userID uuid.UUID, expense models.Expense) error {
	window := stats.MonthWindow(h.Clock.Now(), h.Clock.location())
	if !window.Contains(expense.OccurredAt) {
		return nil
	}

	budget, err := h.Budgets.FindForCategory(ctx, userID, expense.CategoryID, window.Start)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	spentAfter, err := h.Expenses.SumForCategory(ctx, userID, expense.CategoryID, window.Start, window.End)
	if err != nil {
		return err
	}

	_, before, _ := stats.Classify(spentAfter-expense.AmountCents, budget.LimitCents)
	statuses := stats.CompareBudgets(
		[]stats.BudgetLine{{CategoryID: budget.CategoryID, CategoryName: expense.CategoryName, LimitCents: budget.LimitCents}},
		map[uuid.UUID]int64{budget.CategoryID: spentAfter},
	)
	after := statuses[0]
	if !stats.Escalated(before, after.Status) {
		return nil
	}

	alert := alerts.NewBudgetAlert(userID, window.Start, after)
	if h.Notifier != nil {
		h.Notifier.Publish(userID, notifications.Event{Type: notifications.EventBudgetAlert, Data: alert})
	}

	return h.Alerts.PublishBudgetAlert(ctx, alert)
}

func toExpenseResponse(expense models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           expense.ID,
		Title:        expense.Title,
		AmountCents:  expense.AmountCents,
		CategoryID:   expense.CategoryID,
		CategoryName: expense.CategoryName,
		OccurredAt:   expense.OccurredAt,
		CreatedAt:    expense.CreatedAt,
	}
}

func validationMessage(req CreateExpenseRequest) string {
	switch {
	case req.Title == "":
		return "title is required"
	case utf8.RuneCountInString(req.Title) > maxTitleLength:
		return fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	case req.AmountCents <= 0:
		return "amount_cents must be a positive integer"
	case req.CategoryName == "":
		return "categoryName is required"
	case utf8.RuneCountInString(req.CategoryName) > maxCategoryNameLength:
		return fmt.Sprintf("categoryName must be at most %d characters", maxCategoryNameLength)
	default:
		return "validation failed"
	}
}
