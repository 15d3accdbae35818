package service

import (
	"math"
	"time"
)

// UrgentWithinDays is the widest countdown that still shows the urgent badge.
const UrgentWithinDays = 7

// DaysLeft is the time until startsAt rounded up to whole days. Past events
// give zero or a negative count.
func DaysLeft(startsAt, now time.Time) int {
	return int(math.Ceil(startsAt.Sub(now).Hours() / 24))
}

// IsUrgent reports whether a countdown earns the urgent badge: 1..7 days.
func IsUrgent(days int) bool {
	return days > 0 && days <= UrgentWithinDays
}

// FillRatio is attendees/capacity clamped to [0,1]. A non-positive capacity
// yields 0.
func FillRatio(attendees, capacity int) float64 {
	if capacity <= 0 || attendees <= 0 {
		return 0
	}
	r := float64(attendees) / float64(capacity)
	if r > 1 {
		return 1
	}
	return r
}

// FillPercent is FillRatio as a whole percentage, rounded to nearest.
func FillPercent(attendees, capacity int) int {
	return int(math.Round(FillRatio(attendees, capacity) * 100))
}
