package models

import (
	"errors"
	"fmt"
	"time"
)

// TransportationMode is the travel mode passed to the routing provider
type TransportationMode string

const (
	ModeDriving   TransportationMode = "driving"
	ModeWalking   TransportationMode = "walking"
	ModeBicycling TransportationMode = "bicycling"
	ModeTransit   TransportationMode = "transit"
)

// Valid reports whether the mode is one the routing provider understands
func (m TransportationMode) Valid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return true
	}
	return false
}

// Scheduling style ids as sent by the mobile client
const (
	StyleASAP      = 0
	StyleOnePerDay = 1
)

// SchedulingStyle selects how a workflow packs its events
type SchedulingStyle struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// OnePerDay reports whether at most one event of the workflow may land on a calendar day
func (s SchedulingStyle) OnePerDay() bool {
	return s.ID == StyleOnePerDay
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the point the way the directions API expects it
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// MinuteOfDay returns hours*60+minutes, the total order used for comparisons
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hours*60 + t.Minutes
}

// Valid checks the 0..23 / 0..59 ranges
func (t TimeOfDay) Valid() bool {
	return t.Hours >= 0 && t.Hours <= 23 && t.Minutes >= 0 && t.Minutes <= 59
}

// On anchors the time of day to the calendar date of day, in day's location
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hours, t.Minutes, 0, 0, day.Location())
}

// Workflow is a recurring weekly time-window policy
type Workflow struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	TimeStart         TimeOfDay       `json:"timeStart"`
	TimeEnd           TimeOfDay       `json:"timeEnd"`
	DaysOfWeek        [7]bool         `json:"daysOfWeek"` // index 0 = Sunday
	SchedulingStyle   SchedulingStyle `json:"schedulingStyle"`
	PushNotifications bool            `json:"pushNotifications"`
	Color             string          `json:"color,omitempty"`
}

// Window is the length of the daily time window
func (w Workflow) Window() time.Duration {
	return time.Duration(w.TimeEnd.MinuteOfDay()-w.TimeStart.MinuteOfDay()) * time.Minute
}

// AllowsWeekday checks the day-of-week mask
func (w Workflow) AllowsWeekday(d time.Weekday) bool {
	return w.DaysOfWeek[int(d)]
}

// HasAllowedDay reports whether at least one weekday is enabled
func (w Workflow) HasAllowedDay() bool {
	for _, ok := range w.DaysOfWeek {
		if ok {
			return true
		}
	}
	return false
}

// Validate checks the workflow invariants
func (w Workflow) Validate() error {
	if !w.TimeStart.Valid() || !w.TimeEnd.Valid() {
		return errors.New("workflow time window is out of range")
	}
	if w.TimeStart.MinuteOfDay() > w.TimeEnd.MinuteOfDay() {
		return errors.New("workflow timeStart must not be after timeEnd")
	}
	if !w.HasAllowedDay() {
		return errors.New("workflow must allow at least one day of the week")
	}
	return nil
}

// Event is a single scheduled occurrence with a location and time span
type Event struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	StartTime          time.Time          `json:"startTime"`
	EndTime            time.Time          `json:"endTime"`
	Coordinates        Coordinates        `json:"coordinates"`
	TransportationMode TransportationMode `json:"transportationMode"`
	Workflow           *string            `json:"workflow"`
}

// BelongsTo reports whether the event was scheduled for the given workflow
func (e Event) BelongsTo(workflowID string) bool {
	return e.Workflow != nil && *e.Workflow == workflowID
}

// Validate checks that the event spans a positive time within one calendar day
func (e Event) Validate(loc *time.Location) error {
	if !e.StartTime.Before(e.EndTime) {
		return errors.New("event startTime must be before endTime")
	}
	if loc == nil {
		loc = time.UTC
	}
	sy, sm, sd := e.StartTime.In(loc).Date()
	ey, em, ed := e.EndTime.In(loc).Date()
	if sy != ey || sm != em || sd != ed {
		return errors.New("event must start and end on the same calendar day")
	}
	return nil
}
