package dispatcher_test

import (
	"testing"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_SubscribeDuringPublishIsNotInvoked(t *testing.T) {
	bus := dispatcher.CreateBus()
	rec := &recorder{}

	_, err := bus.Subscribe("wave", dispatcher.Func(func(args ...any) {
		rec.callback("outer", nil)()
		_, subErr := bus.Subscribe("wave", rec.callback("late", nil))
		require.NoError(t, subErr)
	}))
	require.NoError(t, err)

	results, err := bus.Publish("wave")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"outer"}, rec.list())

	_, err = bus.Publish("wave")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "outer", "late"}, rec.list())
}

func TestPublish_RemovedBeforeReachedIsSkipped(t *testing.T) {
	bus := dispatcher.CreateBus()
	rec := &recorder{}

	var unsubscribeSecond dispatcher.UnsubscribeFunc
	_, err := bus.Subscribe("wave", dispatcher.Func(func(args ...any) {
		rec.callback("first", nil)()
		unsubscribeSecond()
	}))
	require.NoError(t, err)
	unsubscribeSecond, err = bus.Subscribe("wave", rec.callback("second", nil), "second")
	require.NoError(t, err)
	_, err = bus.Subscribe("wave", rec.callback("third", nil))
	require.NoError(t, err)

	results, err := bus.Publish("wave")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.False(t, results[0].Skipped)
	assert.True(t, results[1].Skipped)
	assert.Equal(t, "second", results[1].Subscriber)
	assert.False(t, results[2].Skipped)
	assert.Equal(t, 2, results.Invoked())
	assert.Equal(t, []string{"first", "third"}, rec.list())
}

func TestPublish_RemovingAlreadyInvokedEntryDoesNotAffectPublish(t *testing.T) {
	bus := dispatcher.CreateBus()
	rec := &recorder{}

	var unsubscribeFirst dispatcher.UnsubscribeFunc
	unsubscribeFirst, err := bus.Subscribe("wave", rec.callback("first", nil))
	require.NoError(t, err)
	_, err = bus.Subscribe("wave", dispatcher.Func(func(args ...any) {
		rec.callback("second", nil)()
		unsubscribeFirst()
	}))
	require.NoError(t, err)

	results, err := bus.Publish("wave")
	require.NoError(t, err)

	assert.Equal(t, 2, results.Invoked())
	assert.Equal(t, []string{"first", "second"}, rec.list())
	assert.Equal(t, 1, bus.ListenerCount("wave"))
}

func TestPublish_SelfUnsubscribe(t *testing.T) {
	bus := dispatcher.CreateBus()
	calls := 0

	var unsubscribe dispatcher.UnsubscribeFunc
	unsubscribe, err := bus.Subscribe("wave", dispatcher.Func(func(args ...any) {
		calls++
		unsubscribe()
	}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = bus.Publish("wave")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount("wave"))
}

func TestPublish_UnsubscribeAllDuringPublish(t *testing.T) {
	bus := dispatcher.CreateBus()
	rec := &recorder{}

	_, err := bus.Subscribe("wave", dispatcher.Func(func(args ...any) {
		rec.callback("clearer", nil)()
		bus.Unsubscribe("wave")
	}))
	require.NoError(t, err)
	_, err = bus.Subscribe("wave", rec.callback("never", nil))
	require.NoError(t, err)

	results, err := bus.Publish("wave")
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.True(t, results[1].Skipped)
	assert.Equal(t, []string{"clearer"}, rec.list())
	assert.Empty(t, bus.Events())
}

func TestSubscribeOnce_RecursivePublishFiresOnce(t *testing.T) {
	bus := dispatcher.CreateBus()
	calls := 0

	_, err := bus.SubscribeOnce("wave", dispatcher.Func(func(args ...any) {
		calls++
		_, pubErr := bus.Publish("wave")
		require.NoError(t, pubErr)
	}))
	require.NoError(t, err)

	_, err = bus.Publish("wave")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount("wave"))
}

func TestSubscribeOnce_RemovedAfterFailure(t *testing.T) {
	bus := dispatcher.CreateBus()
	calls := 0

	_, err := bus.SubscribeOnce("wave", func(args ...any) (any, error) {
		calls++
		panic("once and done")
	})
	require.NoError(t, err)

	results, err := bus.Publish("wave")
	require.NoError(t, err)
	assert.Error(t, results.Err())

	_, err = bus.Publish("wave")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSubscribeOnce_CancelBeforeFiring(t *testing.T) {
	bus := dispatcher.CreateBus()
	calls := 0

	cancel, err := bus.SubscribeOnce("wave", dispatcher.Func(func(args ...any) { calls++ }))
	require.NoError(t, err)
	cancel()

	_, err = bus.Publish("wave")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}
