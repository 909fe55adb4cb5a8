package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/money"
	"example.com/cashdash/backend/internal/notifications"
	"example.com/cashdash/backend/internal/repository"
	"example.com/cashdash/backend/internal/stats"
)

type BudgetHandler struct {
	Categories CategoryStore
	Budgets    BudgetStore
	Expenses   ExpenseStore
	Notifier   *notifications.Hub
	Clock      Clock
}

// NewBudgetHandler создает обработчик месячных бюджетов.
func NewBudgetHandler(categories CategoryStore, budgets BudgetStore, expenses ExpenseStore, notifier *notifications.Hub, clock Clock) *BudgetHandler {
	return &BudgetHandler{
		Categories: categories,
		Budgets:    budgets,
		Expenses:   expenses,
		Notifier:   notifier,
		Clock:      clock,
	}
}

type UpdateBudgetRequest struct {
	CategoryName string  `json:"categoryName" validate:"required,max=100"`
	NewBudget    float64 `json:"newBudget"`
}

type CreateBudgetRequest struct {
	CategoryName string  `json:"categoryName" validate:"required,max=100"`
	Budget       float64 `json:"budget"`
}

type BudgetSummary struct {
	Name   string  `json:"name"`
	Spent  float64 `json:"spent"`
	Budget float64 `json:"budget"`
}

type BudgetStatusResponse struct {
	Month   string               `json:"month"`
	Budgets []stats.BudgetStatus `json:"budgets"`
}

type UpdatedBudget struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}

type UpdateBudgetResponse struct {
	Success bool          `json:"success"`
	Budget  UpdatedBudget `json:"budget"`
}

type CreatedBudget struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	CategoryID uuid.UUID `json:"categoryId"`
	Limit      float64   `json:"limit"`
	Spent      float64   `json:"spent"`
}

type CreateBudgetResponse struct {
	Success bool          `json:"success"`
	Budget  CreatedBudget `json:"budget"`
}

// List возвращает бюджеты текущего месяца с потраченным в основных единицах валюты.
func (h *BudgetHandler) List(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	statuses, err := h.compare(c, user.ID)
	if err != nil {
		return serverError(c, err)
	}

	response := make([]BudgetSummary, 0, len(statuses))
	for _, status := range statuses {
		response = append(response, BudgetSummary{
			Name:   status.CategoryName,
			Spent:  money.ToMajor(status.SpentCents),
			Budget: money.ToMajor(status.LimitCents),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// Status возвращает сравнение трат с лимитами по категориям текущего месяца.
func (h *BudgetHandler) Status(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	statuses, err := h.compare(c, user.ID)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, BudgetStatusResponse{
		Month:   h.Clock.Now().Format("2006-01"),
		Budgets: statuses,
	})
}

// Update меняет лимит бюджета категории на текущий месяц.
func (h *BudgetHandler) Update(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.CategoryName = repository.NormalizeName(req.CategoryName)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, categoryNameMessage(req.CategoryName))
	}

	limitCents, err := money.FromMajor(req.NewBudget)
	if err != nil {
		return badRequest(c, "New budget must be a positive number")
	}

	ctx := c.Request().Context()
	category, err := h.Categories.FindByName(ctx, user.ID, req.CategoryName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Category not found")
		}
		return serverError(c, err)
	}

	monthStart := stats.MonthStart(h.Clock.Now(), h.Clock.location())
	budget, err := h.Budgets.UpdateLimit(ctx, user.ID, category.ID, monthStart, limitCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "Budget not found for this category in the current month")
		}
		return serverError(c, err)
	}

	h.notify(user.ID, "budget_updated", category.Name)

	return c.JSON(http.StatusOK, UpdateBudgetResponse{
		Success: true,
		Budget: UpdatedBudget{
			Category: category.Name,
			Limit:    money.ToMajor(budget.LimitCents),
		},
	})
}

// Create создает бюджет категории на текущий месяц, при необходимости создавая категорию.
func (h *BudgetHandler) Create(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.CategoryName = repository.NormalizeName(req.CategoryName)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, categoryNameMessage(req.CategoryName))
	}

	limitCents, err := money.FromMajor(req.Budget)
	if err != nil {
		return badRequest(c, "Budget must be a positive number")
	}

	ctx := c.Request().Context()
	category, _, err := h.Categories.Ensure(ctx, user.ID, req.CategoryName)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "Category name is required")
		}
		return serverError(c, err)
	}

	monthStart := stats.MonthStart(h.Clock.Now(), h.Clock.location())
	budget, err := h.Budgets.Create(ctx, user.ID, category, limitCents, monthStart)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return badRequest(c, "Budget already exists for this category this month")
		}
		return serverError(c, err)
	}

	h.notify(user.ID, "budget_created", category.Name)

	return c.JSON(http.StatusCreated, CreateBudgetResponse{
		Success: true,
		Budget: CreatedBudget{
			ID:         budget.ID,
			Category:   category.Name,
			CategoryID: category.ID,
			Limit:      money.ToMajor(budget.LimitCents),
			Spent:      0,
		},
	})
}

// compare читает бюджеты и траты текущего месяца параллельно и сравнивает их.
func (h *BudgetHandler) compare(c echo.Context, userID uuid.UUID) ([]stats.BudgetStatus, error) {
	window := stats.MonthWindow(h.Clock.Now(), h.Clock.location())

	var (
		budgets  []models.Budget
		expenses []models.Expense
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		budgets, err = h.Budgets.ListForMonth(ctx, userID, window.Start)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = h.Expenses.ListBetween(ctx, userID, window.Start, window.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats.CompareBudgets(budgetLines(budgets), stats.SpentByCategory(toRecords(expenses))), nil
}

func (h *BudgetHandler) notify(userID uuid.UUID, reason, category string) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.BudgetUpdated(userID, reason, category)
}

func budgetLines(budgets []models.Budget) []stats.BudgetLine {
	lines := make([]stats.BudgetLine, 0, len(budgets))
	for _, budget := range budgets {
		lines = append(lines, stats.BudgetLine{
			CategoryID:   budget.CategoryID,
			CategoryName: budget.CategoryName,
			LimitCents:   budget.LimitCents,
		})
	}
	return lines
}
