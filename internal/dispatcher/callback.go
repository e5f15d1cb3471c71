package dispatcher

// Callback is invoked with the arguments passed to a publish. The returned value
// ends up in the subscriber's Result for synchronous publishes.
type Callback func(args ...any) (any, error)

// Func adapts a callback that produces nothing
func Func(fn func(args ...any)) Callback {
	return func(args ...any) (any, error) {
		fn(args...)
		return nil, nil
	}
}

// ValueFunc adapts a callback that produces a value and cannot fail
func ValueFunc(fn func(args ...any) any) Callback {
	return func(args ...any) (any, error) {
		return fn(args...), nil
	}
}

// UnsubscribeFunc removes the subscription it was returned for. Calling it more
// than once is a no-op.
type UnsubscribeFunc func()
