package achievements

import "time"

// XPPerExpense очки опыта за каждую записанную трату.
const XPPerExpense = 10

// NextStreak возвращает длину серии дней после активности today.
// Активность в тот же день серию не меняет, на следующий день продлевает, после пропуска начинает заново.
func NextStreak(lastActivity *time.Time, current int, today time.Time) int {
	if lastActivity == nil || current <= 0 {
		return 1
	}

	last := dateOnly(*lastActivity)
	day := dateOnly(today)

	switch {
	case day.Equal(last), day.Before(last):
		return current
	case day.Equal(last.AddDate(0, 0, 1)):
		return current + 1
	default:
		return 1
	}
}

// ActiveStreak возвращает серию, действующую на день today: если последняя
// активность была раньше вчерашнего дня, серия уже прервана и равна нулю.
func ActiveStreak(lastActivity *time.Time, current int, today time.Time) int {
	if lastActivity == nil || current <= 0 {
		return 0
	}

	if dateOnly(today).After(dateOnly(*lastActivity).AddDate(0, 0, 1)) {
		return 0
	}

	return current
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
