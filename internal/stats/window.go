package stats

import "time"

// Window полуоткрытый интервал [Start, End) для агрегации трат.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow возвращает окно календарного месяца, содержащего now, в зоне loc.
func MonthWindow(now time.Time, loc *time.Location) Window {
	start := MonthStart(now, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// TrailingMonths возвращает окно из months календарных месяцев, заканчивающееся текущим.
func TrailingMonths(now time.Time, loc *time.Location, months int) Window {
	if months < 1 {
		months = 1
	}
	current := MonthStart(now, loc)
	return Window{Start: current.AddDate(0, -(months - 1), 0), End: current.AddDate(0, 1, 0)}
}

// TrailingDays возвращает окно последних days суток до now.
func TrailingDays(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// MonthStart возвращает полночь первого дня месяца now в зоне loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// Contains сообщает, попадает ли t в окно.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

