package scheduler

import (
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
)

// DefaultHorizonDays is how many calendar days are searched when the caller does not say
const DefaultHorizonDays = 14

const dateKey = "2006-01-02"

// CandidateDays lists local midnights of the horizon, earliest first. Under the
// one-per-day policy days outside the workflow's weekday mask and days that
// already hold an event of the workflow are dropped.
func CandidateDays(start time.Time, horizonDays int, wf models.Workflow, onePerDay bool, events []models.Event, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if horizonDays > MaxHorizonDays {
		horizonDays = MaxHorizonDays
	}

	taken := make(map[string]bool)
	if onePerDay {
		for _, e := range events {
			if e.BelongsTo(wf.ID) {
				taken[e.StartTime.In(loc).Format(dateKey)] = true
			}
		}
	}

	y, m, d := start.In(loc).Date()
	days := make([]time.Time, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		if onePerDay {
			if !wf.AllowsWeekday(day.Weekday()) || taken[day.Format(dateKey)] {
				continue
			}
		}
		days = append(days, day)
	}
	return days
}
