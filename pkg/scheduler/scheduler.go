package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrWorkflowTooShort means the requested duration cannot fit in the workflow window
	ErrWorkflowTooShort = errors.New("duration exceeds the workflow time window")

	// ErrInvalidRequest wraps malformed scheduling requests
	ErrInvalidRequest = errors.New("invalid schedule request")
)

// DefaultLookaround bounds how far from a day's window an existing event may
// sit and still be considered a neighbor.
const DefaultLookaround = 24 * time.Hour

// MaxHorizonDays caps how many calendar days one call may search
const MaxHorizonDays = 366

// Request is one autoschedule call. Events is a read-only snapshot.
type Request struct {
	Workflow     models.Workflow
	Events       []models.Event
	Target       models.Coordinates
	Duration     time.Duration
	Location     *time.Location
	Name         string
	Description  string
	OnePerDay    bool
	Mode         models.TransportationMode
	HorizonStart time.Time
	HorizonDays  int
}

// Scheduler places one new event into a calendar, first fit, earliest day first
type Scheduler struct {
	oracle      travel.Oracle
	logger      zerolog.Logger
	concurrency int
	lookaround  time.Duration
	newID       func() string
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithConcurrency bounds parallel travel-time lookups within one day
func WithConcurrency(n int) Option {
	return func(s *Scheduler) { s.concurrency = n }
}

// WithLookaround overrides DefaultLookaround
func WithLookaround(d time.Duration) Option {
	return func(s *Scheduler) { s.lookaround = d }
}

// WithIDGenerator overrides the uuid event ids
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) { s.newID = fn }
}

// NewScheduler creates a new scheduler instance
func NewScheduler(oracle travel.Oracle, logger zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		oracle:      oracle,
		logger:      logger.With().Str("component", "scheduler").Logger(),
		concurrency: 4,
		lookaround:  DefaultLookaround,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks a request without touching the oracle
func Validate(req Request) error {
	if req.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	wf := req.Workflow
	if !wf.TimeStart.Valid() || !wf.TimeEnd.Valid() {
		return fmt.Errorf("%w: workflow time window is out of range", ErrInvalidRequest)
	}
	if wf.TimeStart.MinuteOfDay() > wf.TimeEnd.MinuteOfDay() {
		return fmt.Errorf("%w: workflow timeStart is after timeEnd", ErrInvalidRequest)
	}
	if req.OnePerDay && !wf.HasAllowedDay() {
		return fmt.Errorf("%w: workflow allows no day of the week", ErrInvalidRequest)
	}
	if req.HorizonDays < 0 || req.HorizonDays > MaxHorizonDays {
		return fmt.Errorf("%w: horizon may not exceed %d days", ErrInvalidRequest, MaxHorizonDays)
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return fmt.Errorf("%w: unknown transportation mode %q", ErrInvalidRequest, req.Mode)
	}
	if req.Duration > wf.Window() {
		return fmt.Errorf("%w: %v requested, window is %v", ErrWorkflowTooShort, req.Duration, wf.Window())
	}
	return nil
}

// Autoschedule returns the first event that fits, or nil when the horizon has
// no room. Errors are reserved for invalid requests and cancellation.
func (s *Scheduler) Autoschedule(ctx context.Context, req Request) (*models.Event, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	if req.Mode == "" {
		req.Mode = models.ModeDriving
	}

	busy := BusyBuilder{
		Oracle:      travel.NewMemo(s.oracle),
		Logger:      s.logger,
		Concurrency: s.concurrency,
	}

	days := CandidateDays(req.HorizonStart, req.HorizonDays, req.Workflow, req.OnePerDay, req.Events, loc)
	s.logger.Debug().
		Str("workflow_id", req.Workflow.ID).
		Int("candidate_days", len(days)).
		Bool("one_per_day", req.OnePerDay).
		Msg("autoschedule search started")

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		windowStart := req.Workflow.TimeStart.On(day)
		windowEnd := req.Workflow.TimeEnd.On(day)
		if req.HorizonStart.After(windowStart) {
			windowStart = ceilMinute(req.HorizonStart.In(loc))
		}
		if windowEnd.Sub(windowStart) < req.Duration {
			continue
		}

		neighbors := eventsNear(req.Events, windowStart.Add(-s.lookaround), windowEnd.Add(s.lookaround))
		intervals := busy.Build(ctx, req.Target, req.Mode, neighbors)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, ok := FindSlot(windowStart, windowEnd, intervals, req.Duration)
		if !ok {
			continue
		}

		workflowID := req.Workflow.ID
		event := &models.Event{
			ID:                 s.newID(),
			Name:               req.Name,
			Description:        req.Description,
			StartTime:          start,
			EndTime:            start.Add(req.Duration),
			Coordinates:        req.Target,
			TransportationMode: req.Mode,
			Workflow:           &workflowID,
		}
		s.logger.Info().
			Str("workflow_id", workflowID).
			Time("start", event.StartTime).
			Msg("autoscheduled event")
		return event, nil
	}

	s.logger.Info().Str("workflow_id", req.Workflow.ID).Msg("no feasible slot in horizon")
	return nil, nil
}

func ceilMinute(t time.Time) time.Time {
	if tr := t.Truncate(time.Minute); !tr.Equal(t) {
		return tr.Add(time.Minute)
	}
	return t
}
