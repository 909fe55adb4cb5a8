package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"example.com/cashdash/backend/internal/calendar"
	"example.com/cashdash/backend/internal/chart"
	"example.com/cashdash/backend/internal/money"
	"example.com/cashdash/backend/internal/stats"
)

const (
	monthLayout      = "2006-01"
	defaultChartDays = 7
	maxChartDays     = 92
)

var errDailyLimit = errors.New("daily_limit must be a non-negative number")

type DashboardHandler struct {
	Budgets  BudgetStore
	Expenses ExpenseStore
	Clock    Clock
}

// NewDashboardHandler создает обработчик данных для тепловой карты и графиков.
func NewDashboardHandler(budgets BudgetStore, expenses ExpenseStore, clock Clock) *DashboardHandler {
	return &DashboardHandler{Budgets: budgets, Expenses: expenses, Clock: clock}
}

type HeatmapCell struct {
	calendar.Cell
	Amount float64 `json:"amount"`
	Above  bool    `json:"above"`
}

type HeatmapResponse struct {
	Month      string        `json:"month"`
	DailyLimit float64       `json:"daily_limit"`
	Weekdays   []string      `json:"weekdays"`
	Cells      []HeatmapCell `json:"cells"`
}

type DailyChartResponse struct {
	Days       int          `json:"days"`
	DailyLimit float64      `json:"daily_limit"`
	Layout     chart.Layout `json:"layout"`
}

// Heatmap возвращает сетку месяца с тратами по дням и отметкой превышения дневного лимита.
func (h *DashboardHandler) Heatmap(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	loc := h.Clock.location()
	monthStart := stats.MonthStart(h.Clock.Now(), loc)
	if value := c.QueryParam("month"); value != "" {
		parsed, err := time.ParseInLocation(monthLayout, value, loc)
		if err != nil {
			return badRequest(c, "month must be in YYYY-MM format")
		}
		monthStart = parsed
	}

	limit, explicit, err := parseDailyLimit(c.QueryParam("daily_limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	window := stats.Window{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}
	daily, budgetCents, err := h.load(c.Request().Context(), user.ID, window, !explicit)
	if err != nil {
		return serverError(c, err)
	}

	if !explicit {
		limit = defaultDailyLimit(budgetCents, monthStart)
	}

	cells := calendar.ForDate(monthStart)
	response := HeatmapResponse{
		Month:      monthStart.Format(monthLayout),
		DailyLimit: limit,
		Weekdays:   calendar.WeekdayLabels[:],
		Cells:      make([]HeatmapCell, 0, len(cells)),
	}
	for _, cell := range cells {
		item := HeatmapCell{Cell: cell}
		if !cell.OutOfMonth {
			item.Amount = money.ToMajor(daily[cell.Date])
			item.Above = item.Amount > limit
		}
		response.Cells = append(response.Cells, item)
	}

	return c.JSON(http.StatusOK, response)
}

// Daily возвращает геометрию линейного графика трат за последние дни относительно дневного лимита.
func (h *DashboardHandler) Daily(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	days := defaultChartDays
	if value := c.QueryParam("days"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > maxChartDays {
			return badRequest(c, "days must be between 1 and 92")
		}
		days = parsed
	}

	limit, explicit, err := parseDailyLimit(c.QueryParam("daily_limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	now := h.Clock.Now()
	loc := h.Clock.location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	window := stats.Window{Start: today.AddDate(0, 0, -(days - 1)), End: today.AddDate(0, 0, 1)}

	daily, budgetCents, err := h.load(c.Request().Context(), user.ID, window, !explicit)
	if err != nil {
		return serverError(c, err)
	}

	if !explicit {
		limit = defaultDailyLimit(budgetCents, stats.MonthStart(now, loc))
	}

	points := make([]chart.Point, 0, days)
	for day := window.Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		points = append(points, chart.Point{
			Label: dayLabel(day, days),
			Value: money.ToMajor(daily[day.Format(time.DateOnly)]),
		})
	}

	return c.JSON(http.StatusOK, DailyChartResponse{
		Days:       days,
		DailyLimit: limit,
		Layout:     chart.Build(points, limit, chart.Options{PadPercent: 10}),
	})
}

// load параллельно читает траты окна и, если нужно, сумму бюджетов месяца.
func (h *DashboardHandler) load(ctx context.Context, userID uuid.UUID, window stats.Window, withBudget bool) (map[string]int64, int64, error) {
	var (
		daily       map[string]int64
		budgetCents int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		expenses, err := h.Expenses.ListBetween(ctx, userID, window.Start, window.End)
		if err != nil {
			return err
		}
		daily = stats.DailyTotals(toRecords(expenses), h.Clock.location())
		return nil
	})
	if withBudget {
		g.Go(func() error {
			var err error
			budgetCents, err = h.Budgets.TotalForMonth(ctx, userID, stats.MonthStart(window.End.Add(-time.Nanosecond), h.Clock.location()))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return daily, budgetCents, nil
}

// parseDailyLimit разбирает явный дневной лимит в основных единицах.
func parseDailyLimit(value string) (float64, bool, error) {
	if value == "" {
		return 0, false, nil
	}

	limit, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		return 0, false, errDailyLimit
	}

	return limit, true, nil
}

// defaultDailyLimit делит сумму бюджетов месяца на число его дней.
func defaultDailyLimit(budgetCents int64, monthStart time.Time) float64 {
	days := monthStart.AddDate(0, 1, -1).Day()
	return math.Round(money.ToMajor(budgetCents)/float64(days)*100) / 100
}

func dayLabel(day time.Time, days int) string {
	if days <= 7 {
		return day.Format("Mon")
	}
	return day.Format("Jan 2")
}
