package scheduler

import (
	"testing"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = [7]bool{false, true, true, true, true, true, false}

func TestCandidateDays_OnePerDayHonorsMask(t *testing.T) {
	// Saturday
	start := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	wf := models.Workflow{ID: "wf", DaysOfWeek: weekdays}

	days := CandidateDays(start, 7, wf, true, nil, time.UTC)
	require.Len(t, days, 5)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, 6, days[0].Day())
	for _, d := range days {
		assert.True(t, wf.AllowsWeekday(d.Weekday()))
	}
}

func TestCandidateDays_OnePerDaySkipsTakenDays(t *testing.T) {
	start := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	wf := models.Workflow{ID: "wf", DaysOfWeek: weekdays}
	other := "other"
	events := []models.Event{
		{StartTime: time.Date(2024, time.May, 6, 15, 0, 0, 0, time.UTC), Workflow: &wf.ID},
		{StartTime: time.Date(2024, time.May, 7, 15, 0, 0, 0, time.UTC), Workflow: &other},
	}

	days := CandidateDays(start, 3, wf, true, events, time.UTC)
	require.Len(t, days, 2)
	assert.Equal(t, 7, days[0].Day())
	assert.Equal(t, 8, days[1].Day())
}

func TestCandidateDays_TakenDayResolvedInRequestTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	wf := models.Workflow{ID: "wf", DaysOfWeek: [7]bool{true, true, true, true, true, true, true}}
	// 03:00 UTC on the 7th is the evening of the 6th in Los Angeles
	events := []models.Event{{StartTime: time.Date(2024, time.May, 7, 3, 0, 0, 0, time.UTC), Workflow: &wf.ID}}
	start := time.Date(2024, time.May, 6, 0, 0, 0, 0, loc)

	days := CandidateDays(start, 2, wf, true, events, loc)
	require.Len(t, days, 1)
	assert.Equal(t, 7, days[0].Day())
}

func TestCandidateDays_ASAPIgnoresMaskAndExistingEvents(t *testing.T) {
	start := time.Date(2024, time.May, 4, 10, 0, 0, 0, time.UTC)
	wf := models.Workflow{ID: "wf", DaysOfWeek: [7]bool{false, true}}
	events := []models.Event{{StartTime: time.Date(2024, time.May, 4, 15, 0, 0, 0, time.UTC), Workflow: &wf.ID}}

	days := CandidateDays(start, 4, wf, false, events, time.UTC)
	require.Len(t, days, 4)
	assert.Equal(t, time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC), days[0])
}

func TestCandidateDays_DefaultHorizon(t *testing.T) {
	days := CandidateDays(time.Now(), 0, models.Workflow{}, false, nil, nil)
	assert.Len(t, days, DefaultHorizonDays)
}

func TestCandidateDays_HorizonIsCapped(t *testing.T) {
	days := CandidateDays(time.Now(), 1<<50, models.Workflow{}, false, nil, time.UTC)
	assert.Len(t, days, MaxHorizonDays)
}
