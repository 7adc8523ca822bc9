package models

import "time"

// AutoscheduleInput is the body of POST /api/autoschedule
type AutoscheduleInput struct {
	Events         []Event            `json:"events"`
	Workflow       Workflow           `json:"workflow"`
	Coordinates    Coordinates        `json:"coordinates"`
	Duration       int                `json:"duration"` // minutes
	TimeZone       string             `json:"timeZone"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Transportation TransportationMode `json:"transportation"`
	StartSearch    time.Time          `json:"startSearch"`
	DaysAhead      int                `json:"daysAhead"`
}

// StoredAutoscheduleInput schedules against the workflow and events kept in the store
type StoredAutoscheduleInput struct {
	WorkflowID     string             `json:"workflowId"`
	Coordinates    Coordinates        `json:"coordinates"`
	Duration       int                `json:"duration"`
	TimeZone       string             `json:"timeZone"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Transportation TransportationMode `json:"transportation"`
	StartSearch    time.Time          `json:"startSearch"`
	DaysAhead      int                `json:"daysAhead"`
}

// PollInput is the body of POST /api/poll
type PollInput struct {
	Event       Event       `json:"event"`
	Coordinates Coordinates `json:"coordinates"`
}

// PollResponse carries the travel time in minutes
type PollResponse struct {
	TravelTime int `json:"travelTime"`
}

// RouteInput is the body of POST /api/route
type RouteInput struct {
	Origin         Coordinates        `json:"origin"`
	Destination    Coordinates        `json:"destination"`
	Transportation TransportationMode `json:"transportation"`
}
