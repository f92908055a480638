// Package datemath provides calendar-day difference helpers used by the
// derived-view computations. A "day" is a fixed 24h window; partial days
// round away from zero so that any time tomorrow counts as 1 day out.
package datemath

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// DaysUntil returns the number of days from now until date, rounded up.
// Negative when date is in the past.
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(float64(date.Sub(now)) / float64(day)))
}

// DaysOverdue returns the number of days date lies in the past, rounded up.
// Negative when date is in the future.
func DaysOverdue(date, now time.Time) int {
	return int(math.Ceil(float64(now.Sub(date)) / float64(day)))
}
