// Package dispatcher implements an in-process publish/subscribe event bus.
//
// Callbacks are registered against string event names and invoked with
// positional, untyped arguments. Three publish disciplines are offered:
//
//   - Publish runs every subscriber on the caller's goroutine and returns one
//     Result per subscriber.
//   - PublishDeferred starts each subscriber on its own goroutine and returns
//     immediately.
//   - PublishNoYield runs every subscriber inline and discards results. Go has
//     no implicit suspension point on a plain function call, so this is the same
//     code path as Publish; it is kept for callers that use the name.
//
// # Ordering
//
// Subscribers of one event run in subscribe order. A publish iterates a
// snapshot of the subscriber list taken when it starts: entries added during
// the publish are not invoked by it, entries removed before they are reached
// are skipped. Two concurrent publishes of the same event are not ordered
// relative to each other.
//
// # Failures
//
// A callback that returns an error or panics never stops its siblings. Publish
// records the failure in that subscriber's Result; the other modes log it.
//
// There is no per-callback timeout. A callback that never returns blocks a
// synchronous publish forever.
package dispatcher
