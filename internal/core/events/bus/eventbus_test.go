package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("ball.kicked", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("ball.kicked", "ball", 17)))
	require.NoError(t, b.Publish(NewEvent("ball.bound", "ball", 1)))
	assert.Equal(t, []any{17}, got)
}

func TestDeliveryOrderFollowsSubscription(t *testing.T) {
	b := New()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		_, err := b.Subscribe("x", func(Event) error {
			order = append(order, name)
			return nil
		})
		require.NoError(t, err)
	}
	_, err := b.SubscribeAll(func(Event) error {
		order = append(order, "all")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	assert.Equal(t, []string{"first", "second", "third", "all"}, order)
}

func TestErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("one")
	e2 := errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "t", nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	err = b.PublishBatch(NewEvent("x", "t", nil), NewEvent("y", "t", nil))
	assert.ErrorIs(t, err, e2)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, b.Unsubscribe(nil))
	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	var second Subscription
	secondCalls := 0
	_, _ = b.Subscribe("x", func(Event) error {
		return second.Cancel()
	})
	second, _ = b.Subscribe("x", func(Event) error {
		secondCalls++
		return nil
	})

	require.NoError(t, b.Publish(NewEvent("x", "t", nil)))
	assert.Zero(t, secondCalls)
}

func TestNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestObserverMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)

	failure := errors.New("fail")
	_, _ = b.Subscribe("x", func(Event) error { return failure })
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	_ = b.Publish(NewEvent("x", "t", nil))

	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 2, obs.deliveredCount)
	assert.ErrorIs(t, obs.lastErr, failure)

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(2), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, uint64(2), m.SubscribersActive)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("x", "t", nil))
	assert.Equal(t, 1, obs.publishCount)
}
