// Package achievements вычисляет прогресс достижений по статистике активности.
package achievements

import "example.com/cashdash/backend/internal/models"

type Group string

const (
	GroupGettingStarted Group = "Getting Started"
	GroupTransactions   Group = "Transactions"
	GroupStreaks        Group = "Streaks"
	GroupOrganization   Group = "Organization"
	GroupSpecial        Group = "Special"
)

// Input все, что нужно для оценки достижений.
type Input struct {
	Activity models.ActivityStats
	Streak   int
}

type Definition struct {
	ID          int
	Title       string
	Description string
	Icon        string
	Group       Group
	Target      int
	measure     func(Input) int
}

type Progress struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    Group  `json:"category"`
	Progress    int    `json:"progress"`
	MaxProgress int    `json:"maxProgress"`
	Unlocked    bool   `json:"unlocked"`
}

type Summary struct {
	Unlocked     int        `json:"unlocked"`
	Total        int        `json:"total"`
	Achievements []Progress `json:"achievements"`
}

func transactions(in Input) int   { return in.Activity.TransactionCount }
func streak(in Input) int         { return in.Streak }
func earlyBird(in Input) int      { return in.Activity.EarlyTransactions }
func nightOwl(in Input) int       { return in.Activity.LateTransactions }
func weekend(in Input) int        { return in.Activity.WeekendCount }
func categoriesUsed(in Input) int { return in.Activity.CategoriesUsed }
func categoriesMade(in Input) int { return in.Activity.CategoriesCreated }

var definitions = []Definition{
	{ID: 1, Title: "First Steps", Description: "Log your first transaction", Icon: "👶", Group: GroupGettingStarted, Target: 1, measure: transactions},
	{ID: 2, Title: "Early Bird", Description: "Log a transaction before 8 AM", Icon: "🌅", Group: GroupGettingStarted, Target: 1, measure: earlyBird},
	{ID: 3, Title: "Night Owl", Description: "Log a transaction after 10 PM", Icon: "🦉", Group: GroupGettingStarted, Target: 1, measure: nightOwl},
	{ID: 4, Title: "Getting Started", Description: "Log 10 transactions", Icon: "📝", Group: GroupTransactions, Target: 10, measure: transactions},
	{ID: 5, Title: "Consistent Logger", Description: "Log 50 transactions", Icon: "📊", Group: GroupTransactions, Target: 50, measure: transactions},
	{ID: 6, Title: "Transaction Master", Description: "Log 100 transactions", Icon: "🏆", Group: GroupTransactions, Target: 100, measure: transactions},
	{ID: 7, Title: "Data Wizard", Description: "Log 500 transactions", Icon: "🧙", Group: GroupTransactions, Target: 500, measure: transactions},
	{ID: 8, Title: "Streak Starter", Description: "Log transactions for 3 days in a row", Icon: "🔥", Group: GroupStreaks, Target: 3, measure: streak},
	{ID: 9, Title: "Week Warrior", Description: "Log transactions for 7 days in a row", Icon: "⚡", Group: GroupStreaks, Target: 7, measure: streak},
	{ID: 10, Title: "Monthly Master", Description: "Log transactions for 30 days in a row", Icon: "🌟", Group: GroupStreaks, Target: 30, measure: streak},
	{ID: 11, Title: "Unstoppable", Description: "Log transactions for 100 days in a row", Icon: "💎", Group: GroupStreaks, Target: 100, measure: streak},
	{ID: 16, Title: "Category Creator", Description: "Create 5 custom categories", Icon: "🏷️", Group: GroupOrganization, Target: 5, measure: categoriesMade},
	{ID: 17, Title: "Organization Expert", Description: "Log transactions in 10 different categories", Icon: "📁", Group: GroupOrganization, Target: 10, measure: categoriesUsed},
	{ID: 18, Title: "Weekend Warrior", Description: "Log 20 transactions on weekends", Icon: "🎉", Group: GroupSpecial, Target: 20, measure: weekend},
}

// Definitions возвращает копию каталога достижений.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Evaluate считает прогресс каждого достижения; прогресс не превышает цель.
func Evaluate(in Input) Summary {
	summary := Summary{
		Total:        len(definitions),
		Achievements: make([]Progress, 0, len(definitions)),
	}

	for _, def := range definitions {
		value := max(0, min(def.measure(in), def.Target))
		unlocked := value >= def.Target
		if unlocked {
			summary.Unlocked++
		}

		summary.Achievements = append(summary.Achievements, Progress{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Group,
			Progress:    value,
			MaxProgress: def.Target,
			Unlocked:    unlocked,
		})
	}

	return summary
}
