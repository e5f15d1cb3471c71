package deliveries

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/KirkDiggler/dispatcher/internal/errors"
)

type inMemoryRepo struct {
	mu           sync.RWMutex
	stats        map[string]*Stat
	timeProvider TimeProvider
}

// NewInMemory creates an in-memory delivery statistics repository
func NewInMemory(timeProvider TimeProvider) Repository {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &inMemoryRepo{
		stats:        make(map[string]*Stat),
		timeProvider: timeProvider,
	}
}

func (r *inMemoryRepo) Record(_ context.Context, event string, delta Delta) error {
	if event == "" {
		return errors.InvalidArgument("event is required")
	}
	if delta.IsZero() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stat, ok := r.stats[event]
	if !ok {
		stat = &Stat{Event: event}
		r.stats[event] = stat
	}
	stat.Publishes += delta.Publishes
	stat.Deliveries += delta.Deliveries
	stat.Failures += delta.Failures
	if delta.Publishes > 0 {
		stat.LastPublishedAt = r.timeProvider.Now()
	}

	return nil
}

func (r *inMemoryRepo) Get(_ context.Context, event string) (*Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stat, ok := r.stats[event]
	if !ok {
		return nil, errors.NotFoundf("no deliveries recorded for event %q", event)
	}

	copied := *stat
	return &copied, nil
}

func (r *inMemoryRepo) List(_ context.Context) ([]*Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]*Stat, 0, len(r.stats))
	for _, stat := range r.stats {
		copied := *stat
		stats = append(stats, &copied)
	}
	slices.SortFunc(stats, func(a, b *Stat) int { return strings.Compare(a.Event, b.Event) })

	return stats, nil
}

func (r *inMemoryRepo) Reset(_ context.Context, event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stats, event)
	return nil
}
