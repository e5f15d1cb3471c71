package dispatcher

import "go.uber.org/zap"

//go:generate mockgen -destination=mocks/mock_observer.go -package=mocks -source=observer.go

// Observer is notified about bus activity. Implementations are called on the
// publishing goroutine (or the deferred worker) and must not block. A panic in
// an observer is recovered and logged; it never reaches the publisher.
type Observer interface {
	// Published is called once per publish with the size of its snapshot
	Published(event string, mode Mode, subscribers int)

	// Delivered is called after every callback invocation; err is nil on success
	Delivered(event, subscriber string, err error)
}

type observers []Observer

func (o observers) published(logger *zap.Logger, event string, mode Mode, subscribers int) {
	for _, obs := range o {
		notify(logger, event, func() { obs.Published(event, mode, subscribers) })
	}
}

func (o observers) delivered(logger *zap.Logger, event, subscriber string, err error) {
	for _, obs := range o {
		notify(logger, event, func() { obs.Delivered(event, subscriber, err) })
	}
}

func notify(logger *zap.Logger, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("observer panicked",
				zap.String("event", event),
				zap.Any("panic", r))
		}
	}()
	fn()
}
