package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyExamples проверяет пограничные случаи классификации.
func TestClassifyExamples(t *testing.T) {
	cases := []struct {
		name    string
		spent   int64
		limit   int64
		percent int
		status  Status
		noLimit bool
	}{
		{name: "near", spent: 950, limit: 1000, percent: 95, status: StatusNear},
		{name: "exactly eighty", spent: 800, limit: 1000, percent: 80, status: StatusNear},
		{name: "just under eighty", spent: 799, limit: 1000, percent: 80, status: StatusUnder},
		{name: "at limit", spent: 1000, limit: 1000, percent: 100, status: StatusNear},
		{name: "over clamps display", spent: 1500, limit: 1000, percent: 100, status: StatusOver},
		{name: "nothing spent", spent: 0, limit: 1000, percent: 0, status: StatusUnder},
		{name: "zero limit unused", spent: 0, limit: 0, percent: 0, status: StatusUnder, noLimit: true},
		{name: "zero limit spent", spent: 10, limit: 0, percent: 0, status: StatusOver, noLimit: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			percent, status, noLimit := Classify(tc.spent, tc.limit)
			assert.Equal(t, tc.percent, percent)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.noLimit, noLimit)
		})
	}
}

// TestClassifyProperties проверяет определение статусов на случайных парах.
func TestClassifyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		limit := int64(rng.Intn(100000) + 1)
		spent := int64(rng.Intn(200000))

		percent, status, noLimit := Classify(spent, limit)
		require.False(t, noLimit)
		assert.GreaterOrEqual(t, percent, 0)
		assert.LessOrEqual(t, percent, 100)

		ratio := float64(spent) / float64(limit)
		assert.Equal(t, spent > limit, status == StatusOver, "spent=%d limit=%d", spent, limit)
		assert.Equal(t, spent <= limit && spent*100 >= limit*80, status == StatusNear, "spent=%d limit=%d ratio=%f", spent, limit, ratio)
	}
}

// TestClassifyLargeAmounts проверяет классификацию сумм, произведение которых не помещается в int64.
func TestClassifyLargeAmounts(t *testing.T) {
	limit := int64(math.MaxInt64 / 10)

	percent, status, noLimit := Classify(limit, limit)
	assert.Equal(t, 100, percent)
	assert.Equal(t, StatusNear, status)
	assert.False(t, noLimit)

	_, status, _ = Classify(limit/100*79, limit)
	assert.Equal(t, StatusUnder, status)

	_, status, _ = Classify(limit/100*81, limit)
	assert.Equal(t, StatusNear, status)

	_, status, _ = Classify(math.MaxInt64, limit)
	assert.Equal(t, StatusOver, status)
}

// TestCompareBudgets проверяет объединение лимитов и трат.
func TestCompareBudgets(t *testing.T) {
	food, rent, fun := uuid.New(), uuid.New(), uuid.New()
	lines := []BudgetLine{
		{CategoryID: rent, CategoryName: "Rent", LimitCents: 100000},
		{CategoryID: food, CategoryName: "food", LimitCents: 1000},
		{CategoryID: fun, CategoryName: "Fun", LimitCents: 0},
	}
	spent := SpentByCategory([]ExpenseRecord{
		{CategoryID: food, AmountCents: 600},
		{CategoryID: food, AmountCents: 350},
		{CategoryID: uuid.New(), AmountCents: 999},
	})

	got := CompareBudgets(lines, spent)
	require.Len(t, got, 3)

	assert.Equal(t, "food", got[0].CategoryName)
	assert.Equal(t, int64(950), got[0].SpentCents)
	assert.Equal(t, StatusNear, got[0].Status)
	assert.Equal(t, 95, got[0].Percent)

	assert.Equal(t, "Fun", got[1].CategoryName)
	assert.True(t, got[1].NoLimit)
	assert.Equal(t, StatusUnder, got[1].Status)

	assert.Equal(t, "Rent", got[2].CategoryName)
	assert.Zero(t, got[2].SpentCents)
	assert.Equal(t, StatusUnder, got[2].Status)
}

// TestEscalated проверяет порядок серьезности статусов.
func TestEscalated(t *testing.T) {
	assert.True(t, Escalated(StatusUnder, StatusNear))
	assert.True(t, Escalated(StatusNear, StatusOver))
	assert.True(t, Escalated(StatusUnder, StatusOver))
	assert.False(t, Escalated(StatusNear, StatusNear))
	assert.False(t, Escalated(StatusOver, StatusNear))
}
