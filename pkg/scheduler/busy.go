package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Interval is a busy span already widened by travel buffers
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps checks if two time ranges overlap
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// BusyBuilder turns existing events into buffered busy intervals
type BusyBuilder struct {
	Oracle      travel.Oracle
	Logger      zerolog.Logger
	Concurrency int // max events queried at once
}

// Build queries, for every event, the travel time from target to the event
// (arrival-anchored at its start) and back (departure-anchored at its end) and
// widens the event by those amounts. A failed lookup leaves that side unbuffered.
// The result is sorted by start, then end.
func (b BusyBuilder) Build(ctx context.Context, target models.Coordinates, mode models.TransportationMode, events []models.Event) []Interval {
	intervals := make([]Interval, len(events))

	g, gctx := errgroup.WithContext(ctx)
	if b.Concurrency > 0 {
		g.SetLimit(b.Concurrency)
	}
	for i, e := range events {
		i, e := i, e
		g.Go(func() error {
			start, end := e.StartTime, e.EndTime

			before := b.minutes(gctx, e, "before", travel.Query{
				Origin:      target,
				Destination: e.Coordinates,
				Mode:        mode,
				ArrivalTime: &start,
			})
			after := b.minutes(gctx, e, "after", travel.Query{
				Origin:        e.Coordinates,
				Destination:   target,
				Mode:          mode,
				DepartureTime: &end,
			})

			intervals[i] = Interval{
				Start: start.Add(-time.Duration(before) * time.Minute),
				End:   end.Add(time.Duration(after) * time.Minute),
			}
			return nil
		})
	}
	_ = g.Wait()

	sortIntervals(intervals)
	return intervals
}

func (b BusyBuilder) minutes(ctx context.Context, e models.Event, direction string, q travel.Query) int {
	minutes, err := b.Oracle.TravelTime(ctx, q)
	if err != nil {
		b.Logger.Warn().
			Err(err).
			Str("event_id", e.ID).
			Str("direction", direction).
			Msg("travel time lookup failed, using unbuffered span")
		return 0
	}
	if minutes < 0 {
		return 0
	}
	return minutes
}

func sortIntervals(intervals []Interval) {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start.Equal(intervals[j].Start) {
			return intervals[i].End.Before(intervals[j].End)
		}
		return intervals[i].Start.Before(intervals[j].Start)
	})
}

// eventsNear keeps events whose raw span touches [from, to]
func eventsNear(events []models.Event, from, to time.Time) []models.Event {
	var near []models.Event
	for _, e := range events {
		if e.StartTime.After(to) || e.EndTime.Before(from) {
			continue
		}
		near = append(near, e)
	}
	return near
}
