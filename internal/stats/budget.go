package stats

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/cashdash/backend/internal/money"
)

type Status string

const (
	StatusUnder Status = "under"
	StatusNear  Status = "near"
	StatusOver  Status = "over"
)

// nearThresholdPercent порог, начиная с которого бюджет считается почти исчерпанным.
const nearThresholdPercent = 80

type BudgetLine struct {
	CategoryID   uuid.UUID
	CategoryName string
	LimitCents   int64
}

type BudgetStatus struct {
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"name"`
	SpentCents   int64     `json:"spent_cents"`
	LimitCents   int64     `json:"limit_cents"`
	Percent      int       `json:"percent"`
	Status       Status    `json:"status"`
	NoLimit      bool      `json:"no_limit"`
}

// Classify сравнивает потраченное с лимитом.
// Процент для отображения ограничен [0, 100], статус считается по неограниченному отношению.
// Нулевой лимит не дает процента: noLimit=true, статус over при любой трате.
func Classify(spentCents, limitCents int64) (percent int, status Status, noLimit bool) {
	if limitCents <= 0 {
		if spentCents > 0 {
			return 0, StatusOver, true
		}
		return 0, StatusUnder, true
	}

	percent = int(max(0, min(100, money.Percent(spentCents, limitCents, 0))))

	switch {
	case spentCents > limitCents:
		status = StatusOver
	case reachesNear(spentCents, limitCents):
		status = StatusNear
	default:
		status = StatusUnder
	}

	return percent, status, false
}

// reachesNear проверяет spent/limit >= 80% без переполнения int64.
func reachesNear(spentCents, limitCents int64) bool {
	spent := decimal.NewFromInt(spentCents).Mul(decimal.NewFromInt(100))
	threshold := decimal.NewFromInt(limitCents).Mul(decimal.NewFromInt(nearThresholdPercent))
	return spent.GreaterThanOrEqual(threshold)
}

// CompareBudgets строит статус по каждой категории с бюджетом.
// Результат отсортирован по имени категории без учета регистра.
func CompareBudgets(lines []BudgetLine, spent map[uuid.UUID]int64) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(lines))
	for _, line := range lines {
		spentCents := spent[line.CategoryID]
		percent, status, noLimit := Classify(spentCents, line.LimitCents)

		out = append(out, BudgetStatus{
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			SpentCents:   spentCents,
			LimitCents:   line.LimitCents,
			Percent:      percent,
			Status:       status,
			NoLimit:      noLimit,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		left, right := strings.ToLower(out[i].CategoryName), strings.ToLower(out[j].CategoryName)
		if left != right {
			return left < right
		}
		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})

	return out
}

// SpentByCategory суммирует траты по идентификатору категории.
func SpentByCategory(records []ExpenseRecord) map[uuid.UUID]int64 {
	spent := make(map[uuid.UUID]int64)
	for _, record := range records {
		spent[record.CategoryID] += record.AmountCents
	}
	return spent
}

// Escalated сообщает, перешел ли статус в более тревожный (under -> near -> over).
func Escalated(before, after Status) bool {
	return severity(after) > severity(before)
}

func severity(s Status) int {
	switch s {
	case StatusOver:
		return 2
	case StatusNear:
		return 1
	default:
		return 0
	}
}
