package dispatcher

import (
	"fmt"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/validator"
	"go.uber.org/zap"
)

// Publish calls every subscriber of event in subscribe order on the calling
// goroutine and returns once all of them have run. The Results hold one slot
// per subscriber in the snapshot; a failing callback is recorded in its slot
// and does not stop the rest.
func (b *Bus) Publish(event string, args ...any) (Results, error) {
	if !validator.IsNonEmptyString(event) {
		return nil, ErrInvalidEventName
	}

	return b.publishSync(event, ModeSync, args), nil
}

// PublishNoYield calls every subscriber of event inline and discards the results.
// Failures are logged, never returned.
//
// Publish never suspends the caller apart from the callbacks' own work, so this
// is the same path as Publish.
func (b *Bus) PublishNoYield(event string, args ...any) error {
	if !validator.IsNonEmptyString(event) {
		return ErrInvalidEventName
	}

	for _, res := range b.publishSync(event, ModeNoYield, args) {
		if res.Err != nil {
			b.logFailure(event, ModeNoYield, res.Subscriber, res.Err)
		}
	}
	return nil
}

// PublishDeferred starts every subscriber of event on its own goroutine and
// returns without waiting for any of them. Failures are logged. Use Wait to
// block until deferred callbacks have finished.
func (b *Bus) PublishDeferred(event string, args ...any) error {
	if !validator.IsNonEmptyString(event) {
		return ErrInvalidEventName
	}

	entries := b.snapshot(event)
	b.observers.published(b.logger, event, ModeDeferred, len(entries))
	if len(entries) == 0 {
		return nil
	}

	b.begin(len(entries))
	for _, e := range entries {
		go func(e *entry) {
			defer b.done()

			res, ran := b.invoke(e, args)
			if ran && res.Err != nil {
				b.logFailure(event, ModeDeferred, res.Subscriber, res.Err)
			}
		}(e)
	}
	return nil
}

// Wait blocks until every callback started by PublishDeferred has returned
func (b *Bus) Wait() {
	b.inflightMu.Lock()
	defer b.inflightMu.Unlock()

	for b.inflight > 0 {
		b.idle.Wait()
	}
}

func (b *Bus) begin(n int) {
	b.inflightMu.Lock()
	b.inflight += n
	b.inflightMu.Unlock()
}

func (b *Bus) done() {
	b.inflightMu.Lock()
	b.inflight--
	if b.inflight == 0 {
		b.idle.Broadcast()
	}
	b.inflightMu.Unlock()
}

func (b *Bus) publishSync(event string, mode Mode, args []any) Results {
	entries := b.snapshot(event)
	b.observers.published(b.logger, event, mode, len(entries))

	results := make(Results, len(entries))
	for i, e := range entries {
		res, ran := b.invoke(e, args)
		if !ran {
			res.Skipped = true
		}
		results[i] = res
	}
	return results
}

// invoke runs a single entry, recovering panics. It reports false when the
// entry was removed or already claimed and so did not run.
func (b *Bus) invoke(e *entry, args []any) (Result, bool) {
	res := Result{SubscriberID: e.id, Subscriber: e.name}
	if !e.claim() {
		return res, false
	}
	if e.once {
		defer b.remove(e)
	}

	res.Value, res.Err = call(e, args)
	b.observers.delivered(b.logger, e.event, e.name, res.Err)
	return res, true
}

func call(e *entry, args []any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = errors.CallbackFailure(fmt.Errorf("panic: %v", r), e.event, e.name)
		}
	}()

	value, err = e.callback(args...)
	if err != nil {
		return value, errors.CallbackFailure(err, e.event, e.name)
	}
	return value, nil
}

func (b *Bus) logFailure(event string, mode Mode, subscriber string, err error) {
	b.logger.Warn("callback failed",
		zap.String("event", event),
		zap.Stringer("mode", mode),
		zap.String("subscriber", subscriber),
		zap.Error(err))
}
