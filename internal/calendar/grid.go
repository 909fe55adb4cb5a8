// Package calendar строит сетку месяца для тепловой карты трат.
package calendar

import (
	"strconv"
	"time"
)

const (
	daysPerWeek = 7
	minCells    = 5 * daysPerWeek
)

var WeekdayLabels = [daysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Cell клетка сетки. У клеток текущего месяца заполнен Date (YYYY-MM-DD),
// у соседних месяцев только номер дня.
type Cell struct {
	Day        int    `json:"day"`
	Date       string `json:"date,omitempty"`
	OutOfMonth bool   `json:"out_of_month"`
}

// Label возвращает номер дня для отображения.
func (c Cell) Label() string {
	return strconv.Itoa(c.Day)
}

// Grid строит сетку для года и месяца с нумерацией с нуля (0 = январь).
// Неделя начинается с воскресенья, длина кратна 7 и не меньше 35 клеток.
func Grid(year, month0 int) []Cell {
	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	startWeekday := int(first.Weekday())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	prevMonthDays := first.AddDate(0, 0, -1).Day()

	total := startWeekday + daysInMonth
	if rem := total % daysPerWeek; rem != 0 {
		total += daysPerWeek - rem
	}
	if total < minCells {
		total = minCells
	}

	cells := make([]Cell, 0, total)
	for i := 0; i < startWeekday; i++ {
		cells = append(cells, Cell{Day: prevMonthDays - (startWeekday - 1 - i), OutOfMonth: true})
	}

	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1)
		cells = append(cells, Cell{Day: day, Date: date.Format(time.DateOnly)})
	}

	for next := 1; len(cells) < total; next++ {
		cells = append(cells, Cell{Day: next, OutOfMonth: true})
	}

	return cells
}

// ForDate строит сетку месяца, в который попадает t.
func ForDate(t time.Time) []Cell {
	return Grid(t.Year(), int(t.Month())-1)
}

