package models

import (
	"fmt"
	"time"
)

const MinutesPerDay = 24 * 60

// TimeWindow is a day-of-week mask plus a time-of-day range in minutes
// since midnight. A window whose EndMinute is smaller than its StartMinute
// wraps past midnight, e.g. 23:00-02:00 covers two calendar days.
type TimeWindow struct {
	DaysOfWeek  []time.Weekday `json:"days_of_week"`
	StartMinute int            `json:"start_minute"`
	EndMinute   int            `json:"end_minute"`
}

// AllWeek lists every weekday, Sunday first.
func AllWeek() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

// Matches reports whether t falls inside the window.
func (w TimeWindow) Matches(t time.Time) bool {
	return w.MatchesClock(t.Weekday(), t.Hour()*60+t.Minute())
}

// MatchesClock is the pure form of Matches: day plus minute-of-day.
// Both boundaries are inclusive. A window with StartMinute == EndMinute is
// zero-width and only matches at exactly that minute; this is intentional
// strict behaviour, not an "always on" window.
func (w TimeWindow) MatchesClock(day time.Weekday, minute int) bool {
	if !w.ContainsDay(day) {
		return false
	}
	if w.EndMinute < w.StartMinute {
		// wraps past midnight
		return minute >= w.StartMinute || minute <= w.EndMinute
	}
	return minute >= w.StartMinute && minute <= w.EndMinute
}

// ContainsDay reports whether day is in the window's day-of-week mask.
func (w TimeWindow) ContainsDay(day time.Weekday) bool {
	for _, d := range w.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// ClockMinute formats a minute-of-day as HH:MM for display.
func ClockMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
