package dispatcher

import "go.uber.org/multierr"

// Result is the outcome of one subscriber in a synchronous publish
type Result struct {
	// SubscriberID is the generated ID of the subscription
	SubscriberID string

	// Subscriber is the optional name given at subscribe time
	Subscriber string

	// Value is what the callback returned
	Value any

	// Err is set when the callback returned an error or panicked
	Err error

	// Skipped is set when the subscriber was removed, or a fire-once subscriber
	// was already claimed, before this publish reached it
	Skipped bool
}

// Failed reports whether the callback ran and failed
func (r Result) Failed() bool {
	return r.Err != nil
}

// Results holds one Result per subscriber in the publish snapshot, in delivery order
type Results []Result

// Values returns the callback values in order, with nil for failed or skipped slots
func (r Results) Values() []any {
	values := make([]any, len(r))
	for i, res := range r {
		values[i] = res.Value
	}
	return values
}

// Err combines every callback failure, or returns nil
func (r Results) Err() error {
	var err error
	for _, res := range r {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// Invoked returns how many callbacks actually ran
func (r Results) Invoked() int {
	n := 0
	for _, res := range r {
		if !res.Skipped {
			n++
		}
	}
	return n
}
