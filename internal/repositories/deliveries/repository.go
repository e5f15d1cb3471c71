// Package deliveries stores per-event delivery statistics for a bus.
//
// Only counters are stored. Subscriptions themselves are never persisted.
package deliveries

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go

import (
	"context"
	"time"
)

// Stat is the running total for one event
type Stat struct {
	Event           string
	Publishes       int64
	Deliveries      int64
	Failures        int64
	LastPublishedAt time.Time
}

// Delta is an increment applied to a Stat
type Delta struct {
	Publishes  int64
	Deliveries int64
	Failures   int64
}

// IsZero reports whether applying the delta would change nothing
func (d Delta) IsZero() bool {
	return d.Publishes == 0 && d.Deliveries == 0 && d.Failures == 0
}

// Repository defines the interface for delivery statistics storage
type Repository interface {
	Record(ctx context.Context, event string, delta Delta) error
	Get(ctx context.Context, event string) (*Stat, error)
	List(ctx context.Context) ([]*Stat, error)
	Reset(ctx context.Context, event string) error
}
