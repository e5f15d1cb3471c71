package dispatcher_test

import (
	"testing"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
)

func benchBus(b *testing.B, subscribers int) *dispatcher.Bus {
	b.Helper()
	bus := dispatcher.CreateBus()
	for i := 0; i < subscribers; i++ {
		if _, err := bus.Subscribe("bench", dispatcher.ValueFunc(func(args ...any) any { return args[0] })); err != nil {
			b.Fatal(err)
		}
	}
	return bus
}

func BenchmarkPublish(b *testing.B) {
	bus := benchBus(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish("bench", i) //nolint:errcheck // benchmark
	}
}

func BenchmarkPublishSingleSubscriber(b *testing.B) {
	bus := benchBus(b, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish("bench", i) //nolint:errcheck // benchmark
	}
}

func BenchmarkPublishNoSubscribers(b *testing.B) {
	bus := benchBus(b, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish("bench", i) //nolint:errcheck // benchmark
	}
}

func BenchmarkPublishNoYield(b *testing.B) {
	bus := benchBus(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.PublishNoYield("bench", i) //nolint:errcheck // benchmark
	}
}

func BenchmarkPublishDeferred(b *testing.B) {
	bus := benchBus(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.PublishDeferred("bench", i) //nolint:errcheck // benchmark
	}
	bus.Wait()
}

func BenchmarkSubscribeUnsubscribe(b *testing.B) {
	bus := dispatcher.CreateBus()
	cb := dispatcher.Func(func(args ...any) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		unsubscribe, err := bus.Subscribe("bench", cb)
		if err != nil {
			b.Fatal(err)
		}
		unsubscribe()
	}
}
