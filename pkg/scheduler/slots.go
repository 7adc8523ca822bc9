package scheduler

import "time"

// FindSlot returns the earliest start within [windowStart, windowEnd] where
// duration fits between the busy intervals. A gap exactly as long as duration
// is accepted.
func FindSlot(windowStart, windowEnd time.Time, busy []Interval, duration time.Duration) (time.Time, bool) {
	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	sortIntervals(sorted)

	cursor := windowStart
	for _, iv := range sorted {
		if !iv.Start.Before(windowEnd) {
			break
		}
		if iv.Start.Sub(cursor) >= duration {
			return cursor, true
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}

	if windowEnd.Sub(cursor) >= duration {
		return cursor, true
	}
	return time.Time{}, false
}
