package database

import (
	"strings"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
)

// EventRecord represents the events table
type EventRecord struct {
	ID                 string    `gorm:"primaryKey;size:64"`
	Name               string    `gorm:"not null"`
	Description        string
	StartTime          time.Time `gorm:"index;not null"`
	EndTime            time.Time `gorm:"not null"`
	Latitude           float64
	Longitude          float64
	TransportationMode string
	WorkflowID         *string `gorm:"index;size:64"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName pins the table name
func (EventRecord) TableName() string { return "events" }

// WorkflowRecord represents the workflows table
type WorkflowRecord struct {
	ID                string `gorm:"primaryKey;size:64"`
	Name              string `gorm:"not null"`
	StartMinute       int    // minutes after midnight
	EndMinute         int
	DaysOfWeek        string `gorm:"size:7"` // "0111110", Sunday first
	SchedulingStyle   int
	PushNotifications bool
	Color             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName pins the table name
func (WorkflowRecord) TableName() string { return "workflows" }

// NewEventRecord converts an API event into its row
func NewEventRecord(e models.Event) EventRecord {
	return EventRecord{
		ID:                 e.ID,
		Name:               e.Name,
		Description:        e.Description,
		StartTime:          e.StartTime.UTC(),
		EndTime:            e.EndTime.UTC(),
		Latitude:           e.Coordinates.Latitude,
		Longitude:          e.Coordinates.Longitude,
		TransportationMode: string(e.TransportationMode),
		WorkflowID:         e.Workflow,
	}
}

// Model converts the row back into an API event
func (r EventRecord) Model() models.Event {
	return models.Event{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		StartTime:          r.StartTime.UTC(),
		EndTime:            r.EndTime.UTC(),
		Coordinates:        models.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude},
		TransportationMode: models.TransportationMode(r.TransportationMode),
		Workflow:           r.WorkflowID,
	}
}

// NewWorkflowRecord converts an API workflow into its row
func NewWorkflowRecord(w models.Workflow) WorkflowRecord {
	var mask strings.Builder
	for _, on := range w.DaysOfWeek {
		if on {
			mask.WriteByte('1')
		} else {
			mask.WriteByte('0')
		}
	}
	return WorkflowRecord{
		ID:                w.ID,
		Name:              w.Name,
		StartMinute:       w.TimeStart.MinuteOfDay(),
		EndMinute:         w.TimeEnd.MinuteOfDay(),
		DaysOfWeek:        mask.String(),
		SchedulingStyle:   w.SchedulingStyle.ID,
		PushNotifications: w.PushNotifications,
		Color:             w.Color,
	}
}

// Model converts the row back into an API workflow
func (r WorkflowRecord) Model() models.Workflow {
	var days [7]bool
	for i := 0; i < len(days) && i < len(r.DaysOfWeek); i++ {
		days[i] = r.DaysOfWeek[i] == '1'
	}
	style := models.SchedulingStyle{ID: r.SchedulingStyle, Name: "ASAP"}
	if style.OnePerDay() {
		style.Name = "One per day"
	}
	return models.Workflow{
		ID:                r.ID,
		Name:              r.Name,
		TimeStart:         models.TimeOfDay{Hours: r.StartMinute / 60, Minutes: r.StartMinute % 60},
		TimeEnd:           models.TimeOfDay{Hours: r.EndMinute / 60, Minutes: r.EndMinute % 60},
		DaysOfWeek:        days,
		SchedulingStyle:   style,
		PushNotifications: r.PushNotifications,
		Color:             r.Color,
	}
}
