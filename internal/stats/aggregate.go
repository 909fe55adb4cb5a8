// Package stats группирует траты по категориям и месяцам и сравнивает их с бюджетами.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/cashdash/backend/internal/models"
	"example.com/cashdash/backend/internal/money"
)

type ExpenseRecord struct {
	CategoryID   uuid.UUID
	CategoryName string
	AmountCents  int64
	OccurredAt   time.Time
}

type CategoryTotal struct {
	CategoryName string  `json:"category_name"`
	TotalCents   int64   `json:"total_cents"`
	TxCount      int     `json:"tx_count"`
	Pct          float64 `json:"pct"`
}

type MonthTotal struct {
	Year       int
	Month      time.Month
	TotalCents int64
	TxCount    int
}

// Label возвращает трехбуквенное название месяца.
func (m MonthTotal) Label() string {
	return m.Month.String()[:3]
}

// ByCategory суммирует траты по имени категории и считает долю каждой в общей сумме.
// Строки отсортированы по убыванию суммы, при равенстве по имени.
func ByCategory(records []ExpenseRecord) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	var grand int64

	for _, record := range records {
		name := strings.TrimSpace(record.CategoryName)
		if name == "" {
			name = models.UnknownCategoryName
		}

		pos, ok := index[name]
		if !ok {
			pos = len(totals)
			index[name] = pos
			totals = append(totals, CategoryTotal{CategoryName: name})
		}

		totals[pos].TotalCents += record.AmountCents
		totals[pos].TxCount++
		grand += record.AmountCents
	}

	for i := range totals {
		totals[i].Pct = money.Percent(totals[i].TotalCents, grand, 2)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].TotalCents != totals[j].TotalCents {
			return totals[i].TotalCents > totals[j].TotalCents
		}
		return totals[i].CategoryName < totals[j].CategoryName
	})

	return totals
}

// Monthly группирует траты по календарному месяцу в зоне loc.
// Месяцы без трат не добавляются, порядок хронологический.
func Monthly(records []ExpenseRecord, loc *time.Location) []MonthTotal {
	if loc == nil {
		loc = time.UTC
	}

	type monthKey struct {
		year  int
		month time.Month
	}

	index := make(map[monthKey]int)
	months := make([]MonthTotal, 0)

	for _, record := range records {
		local := record.OccurredAt.In(loc)
		key := monthKey{year: local.Year(), month: local.Month()}

		pos, ok := index[key]
		if !ok {
			pos = len(months)
			index[key] = pos
			months = append(months, MonthTotal{Year: key.year, Month: key.month})
		}

		months[pos].TotalCents += record.AmountCents
		months[pos].TxCount++
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	return months
}

// DailyTotals суммирует траты по дате YYYY-MM-DD в зоне loc.
func DailyTotals(records []ExpenseRecord, loc *time.Location) map[string]int64 {
	if loc == nil {
		loc = time.UTC
	}

	totals := make(map[string]int64)
	for _, record := range records {
		totals[record.OccurredAt.In(loc).Format(time.DateOnly)] += record.AmountCents
	}
	return totals
}
