// Package travel estimates how long it takes to get from one place to another.
package travel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/models"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidArgument is returned when a query does not set exactly one of
	// DepartureTime and ArrivalTime.
	ErrInvalidArgument = errors.New("travel: exactly one of departure or arrival time must be set")

	// ErrTravelTimeUnavailable is returned when the routing provider could not
	// produce an estimate (transport failure, timeout, non-OK response).
	ErrTravelTimeUnavailable = errors.New("travel: travel time unavailable")
)

// Query describes one travel-time lookup
type Query struct {
	Origin        models.Coordinates
	Destination   models.Coordinates
	Mode          models.TransportationMode
	DepartureTime *time.Time
	ArrivalTime   *time.Time
}

// Validate enforces the departure/arrival exclusivity
func (q Query) Validate() error {
	if (q.DepartureTime == nil) == (q.ArrivalTime == nil) {
		return ErrInvalidArgument
	}
	return nil
}

// Key identifies the query for caching. Anchors are truncated to bucket when
// bucket is positive.
func (q Query) Key(bucket time.Duration) string {
	kind, anchor := "dep", q.DepartureTime
	if anchor == nil {
		kind, anchor = "arr", q.ArrivalTime
	}
	var ts int64
	if anchor != nil {
		t := *anchor
		if bucket > 0 {
			t = t.Truncate(bucket)
		}
		ts = t.Unix()
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d", q.Origin, q.Destination, q.Mode, kind, ts)
}

// Oracle returns the expected travel duration in whole minutes
type Oracle interface {
	TravelTime(ctx context.Context, q Query) (int, error)
}

// OracleFunc adapts a function to the Oracle interface
type OracleFunc func(ctx context.Context, q Query) (int, error)

// TravelTime calls f
func (f OracleFunc) TravelTime(ctx context.Context, q Query) (int, error) {
	return f(ctx, q)
}

type memoEntry struct {
	minutes int
	err     error
}

// Memo remembers answers for the lifetime of one scheduling call. Failures are
// remembered too so a broken neighbor is not queried once per candidate day.
type Memo struct {
	next Oracle

	mu      sync.Mutex
	entries map[string]memoEntry
	flight  singleflight.Group
}

// NewMemo wraps next with a per-call memo
func NewMemo(next Oracle) *Memo {
	return &Memo{next: next, entries: make(map[string]memoEntry)}
}

// TravelTime returns a remembered answer or asks the wrapped oracle
func (m *Memo) TravelTime(ctx context.Context, q Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	key := q.Key(0)

	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if ok {
		return e.minutes, e.err
	}

	// concurrent lookups of the same pair share one query
	v, _, _ := m.flight.Do(key, func() (interface{}, error) {
		m.mu.Lock()
		e, ok := m.entries[key]
		m.mu.Unlock()
		if ok {
			return e, nil
		}

		minutes, err := m.next.TravelTime(ctx, q)
		e = memoEntry{minutes: minutes, err: err}
		if ctx.Err() != nil {
			// a cancelled caller says nothing about the route
			return e, nil
		}
		m.mu.Lock()
		m.entries[key] = e
		m.mu.Unlock()
		return e, nil
	})
	e = v.(memoEntry)
	return e.minutes, e.err
}

// Counter counts calls that reach the wrapped oracle
type Counter struct {
	next  Oracle
	calls atomic.Int64
}

// NewCounter wraps next with a call counter
func NewCounter(next Oracle) *Counter {
	return &Counter{next: next}
}

// TravelTime forwards the query and counts it
func (c *Counter) TravelTime(ctx context.Context, q Query) (int, error) {
	c.calls.Add(1)
	return c.next.TravelTime(ctx, q)
}

// Calls returns the number of forwarded queries
func (c *Counter) Calls() int {
	return int(c.calls.Load())
}

// Outcome labels reported to a CallObserver
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid_argument"
	OutcomeUnavailable = "unavailable"
)

// CallObserver receives one outcome per oracle call
type CallObserver interface {
	ObserveOracleCall(outcome string)
}

type observed struct {
	next Oracle
	obs  CallObserver
}

// Observe reports every call made through next to obs
func Observe(next Oracle, obs CallObserver) Oracle {
	if obs == nil {
		return next
	}
	return &observed{next: next, obs: obs}
}

func (o *observed) TravelTime(ctx context.Context, q Query) (int, error) {
	minutes, err := o.next.TravelTime(ctx, q)
	switch {
	case err == nil:
		o.obs.ObserveOracleCall(OutcomeOK)
	case errors.Is(err, ErrInvalidArgument):
		o.obs.ObserveOracleCall(OutcomeInvalid)
	default:
		o.obs.ObserveOracleCall(OutcomeUnavailable)
	}
	return minutes, err
}
