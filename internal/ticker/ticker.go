// Package ticker publishes an event on a bus at a fixed interval.
package ticker

import (
	"sync"
	"time"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/validator"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

var (
	// ErrDestroyed is returned when starting a destroyed ticker
	ErrDestroyed = errors.Disposed("ticker is destroyed")
)

// Ticker publishes its event every interval. Subscribers receive the tick
// number (starting at 1) and the time the tick was due.
type Ticker struct {
	bus        *dispatcher.Bus
	event      string
	interval   time.Duration
	allowDrift bool
	mode       dispatcher.Mode
	clock      clock.Clock
	logger     *zap.Logger

	// fireMu serializes ticks across a Stop and restart
	fireMu sync.Mutex

	mu        sync.Mutex
	running   bool
	destroyed bool
	stop      chan struct{}
	ticks     uint64
}

// Option configures a Ticker
type Option func(*Ticker)

// WithClock sets the clock, mainly for tests
func WithClock(c clock.Clock) Option {
	return func(t *Ticker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(t *Ticker) {
		if logger != nil {
			t.logger = logger.Named("ticker")
		}
	}
}

// WithMode selects the publish discipline used for each tick. Defaults to
// dispatcher.ModeNoYield.
func WithMode(mode dispatcher.Mode) Option {
	return func(t *Ticker) {
		t.mode = mode
	}
}

// AllowDrift schedules each tick one interval after the previous one
// finished publishing, instead of on the fixed grid set by Start.
func AllowDrift() Option {
	return func(t *Ticker) {
		t.allowDrift = true
	}
}

// New creates a stopped ticker that publishes event on bus every interval
func New(bus *dispatcher.Bus, event string, interval time.Duration, opts ...Option) (*Ticker, error) {
	if bus == nil {
		return nil, errors.InvalidArgument("bus is required")
	}
	if !validator.IsNonEmptyString(event) {
		return nil, dispatcher.ErrInvalidEventName
	}
	if interval <= 0 {
		return nil, errors.InvalidArgumentf("interval must be positive, got %s", interval)
	}

	t := &Ticker{
		bus:      bus,
		event:    event,
		interval: interval,
		mode:     dispatcher.ModeNoYield,
		clock:    clock.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Interval returns the tick interval
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Event returns the event name the ticker publishes
func (t *Ticker) Event() string {
	return t.event
}

// Start starts ticking. The first tick fires one interval from now.
// Starting a running ticker does nothing.
func (t *Ticker) Start() error {
	return t.start(false)
}

// StartNow starts ticking and fires the first tick right away on the ticker
// goroutine.
// Starting a running ticker does nothing.
func (t *Ticker) StartNow() error {
	return t.start(true)
}

func (t *Ticker) start(now bool) error {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return ErrDestroyed
	}
	if t.running {
		t.mu.Unlock()
		return nil
	}

	t.running = true
	t.stop = make(chan struct{})
	started := t.clock.Now()
	next := started.Add(t.interval)
	timer := t.clock.Timer(t.interval)
	stop := t.stop
	t.mu.Unlock()

	t.logger.Debug("started",
		zap.String("event", t.event),
		zap.Duration("interval", t.interval),
		zap.Bool("allow_drift", t.allowDrift))

	go t.run(timer, next, stop, now)

	return nil
}

// Stop stops ticking. A tick that is already publishing completes, and a
// restart does not publish until it has.
// Stopping a stopped ticker does nothing.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.stop)

	t.logger.Debug("stopped", zap.String("event", t.event))
}

// IsRunning reports whether the ticker is started
func (t *Ticker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.running
}

// Destroy stops the ticker for good
func (t *Ticker) Destroy() {
	t.Stop()

	t.mu.Lock()
	t.destroyed = true
	t.mu.Unlock()
}

func (t *Ticker) run(timer *clock.Timer, next time.Time, stop chan struct{}, now bool) {
	if now {
		t.fire(stop, next.Add(-t.interval))
	}

	for {
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		due := next
		if !t.allowDrift {
			// Arm the next tick before publishing so a slow tick does not shift the grid.
			now := t.clock.Now()
			next = next.Add(t.interval)
			for !next.After(now) {
				next = next.Add(t.interval)
			}
			timer = t.clock.Timer(next.Sub(now))
		}

		select {
		case <-stop:
			timer.Stop()
			return
		default:
		}
		t.fire(stop, due)

		if t.allowDrift {
			next = t.clock.Now().Add(t.interval)
			timer = t.clock.Timer(t.interval)
		}
	}
}

func (t *Ticker) fire(stop chan struct{}, due time.Time) {
	t.fireMu.Lock()
	defer t.fireMu.Unlock()

	select {
	case <-stop:
		return
	default:
	}

	t.mu.Lock()
	t.ticks++
	n := t.ticks
	t.mu.Unlock()

	var err error
	switch t.mode {
	case dispatcher.ModeSync:
		var results dispatcher.Results
		results, err = t.bus.Publish(t.event, n, due)
		if err == nil {
			err = results.Err()
		}
	case dispatcher.ModeDeferred:
		err = t.bus.PublishDeferred(t.event, n, due)
	default:
		err = t.bus.PublishNoYield(t.event, n, due)
	}

	if err != nil {
		t.logger.Warn("tick publish failed",
			zap.String("event", t.event),
			zap.Uint64("tick", n),
			zap.Error(err))
	}
}

// Simple calls fn every interval until the returned function is called. With
// startNow the first call happens right away.
func Simple(interval time.Duration, fn func(), startNow bool, opts ...Option) (func(), error) {
	bus := dispatcher.CreateBus()
	if _, err := bus.Subscribe("tick", dispatcher.Func(func(...any) { fn() })); err != nil {
		return nil, err
	}

	t, err := New(bus, "tick", interval, opts...)
	if err != nil {
		return nil, err
	}

	if startNow {
		err = t.StartNow()
	} else {
		err = t.Start()
	}
	if err != nil {
		return nil, err
	}

	return func() {
		t.Destroy()
		bus.Dispose()
	}, nil
}
