package models

import (
	"testing"
	"time"
)

func TestTimeOfDayOn(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	day := time.Date(2024, time.March, 11, 0, 0, 0, 0, loc)

	got := TimeOfDay{Hours: 9, Minutes: 30}.On(day)
	if got.Hour() != 9 || got.Minute() != 30 || got.Day() != 11 {
		t.Errorf("Expected 2024-03-11 09:30 local, got %v", got)
	}
	if got.Location() != loc {
		t.Errorf("Expected location %v, got %v", loc, got.Location())
	}
}

func TestWorkflowValidate(t *testing.T) {
	wf := Workflow{
		TimeStart:  TimeOfDay{Hours: 9},
		TimeEnd:    TimeOfDay{Hours: 12},
		DaysOfWeek: [7]bool{false, true, true, true, true, true, false},
	}
	if err := wf.Validate(); err != nil {
		t.Fatalf("Expected valid workflow, got %v", err)
	}
	if wf.Window() != 3*time.Hour {
		t.Errorf("Expected 3h window, got %v", wf.Window())
	}

	overnight := wf
	overnight.TimeStart = TimeOfDay{Hours: 22}
	if err := overnight.Validate(); err == nil {
		t.Error("Expected overnight window to be rejected")
	}

	noDays := wf
	noDays.DaysOfWeek = [7]bool{}
	if err := noDays.Validate(); err == nil {
		t.Error("Expected empty day mask to be rejected")
	}
}

func TestEventValidate(t *testing.T) {
	start := time.Date(2024, time.May, 6, 23, 0, 0, 0, time.UTC)
	e := Event{StartTime: start, EndTime: start.Add(30 * time.Minute)}
	if err := e.Validate(time.UTC); err != nil {
		t.Errorf("Expected valid event, got %v", err)
	}

	e.EndTime = start.Add(2 * time.Hour)
	if err := e.Validate(time.UTC); err == nil {
		t.Error("Expected overnight event to be rejected")
	}

	e.EndTime = start
	if err := e.Validate(time.UTC); err == nil {
		t.Error("Expected zero-length event to be rejected")
	}
}

func TestEventBelongsTo(t *testing.T) {
	id := "wf-1"
	e := Event{Workflow: &id}
	if !e.BelongsTo("wf-1") {
		t.Error("Expected event to belong to wf-1")
	}
	if (Event{}).BelongsTo("wf-1") {
		t.Error("Expected event without workflow to belong to nothing")
	}
}
