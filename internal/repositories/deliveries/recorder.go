package deliveries

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"go.uber.org/zap"
)

const defaultBufferSize = 256

type record struct {
	event string
	delta Delta
}

// Recorder adapts a Repository to dispatcher.Observer. Increments are queued and
// written by a single background worker so publishers never wait on storage.
// When the queue is full increments are dropped and counted.
type Recorder struct {
	repo    Repository
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan record
	done    chan struct{}
	dropped atomic.Int64
}

// RecorderConfig configures a Recorder
type RecorderConfig struct {
	Repository Repository
	Logger     *zap.Logger
	BufferSize int
	// WriteTimeout bounds every repository write; zero means five seconds
	WriteTimeout time.Duration
}

// NewRecorder starts a Recorder. Close must be called to stop its worker.
func NewRecorder(cfg *RecorderConfig) *Recorder {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Recorder{
		repo:    cfg.Repository,
		logger:  logger.Named("deliveries"),
		timeout: timeout,
		queue:   make(chan record, size),
		done:    make(chan struct{}),
	}
	go r.run()

	return r
}

// Published implements dispatcher.Observer
func (r *Recorder) Published(event string, _ dispatcher.Mode, _ int) {
	r.enqueue(event, Delta{Publishes: 1})
}

// Delivered implements dispatcher.Observer
func (r *Recorder) Delivered(event, _ string, err error) {
	delta := Delta{Deliveries: 1}
	if err != nil {
		delta.Failures = 1
	}
	r.enqueue(event, delta)
}

// Dropped returns how many increments were discarded because the queue was full
// or the recorder was closed
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting increments and waits until queued ones are written
// or ctx is done
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) enqueue(event string, delta Delta) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		return
	}

	select {
	case r.queue <- record{event: event, delta: delta}:
	default:
		if n := r.dropped.Add(1); n%100 == 1 {
			r.logger.Warn("delivery queue full, dropping increments", zap.Int64("dropped", n))
		}
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.repo.Record(ctx, rec.event, rec.delta); err != nil {
			r.logger.Warn("failed to record deliveries",
				zap.String("event", rec.event),
				zap.Error(err))
		}
		cancel()
	}
}
