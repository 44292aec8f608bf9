package messaging

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

func newTestBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func submittedEvent(userID string) shared.Event {
	activity, _ := reward.NewActivity(shared.UserID(userID), reward.KindCodeMerge, nil)
	return reward.NewActivitySubmittedEvent(activity)
}

func TestPublishJoinsAllHandlers(t *testing.T) {
	bus := newTestBus(t)

	var typed, global atomic.Int64
	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		typed.Add(1)
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		typed.Add(1)
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		global.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(submittedEvent("u1")))

	// Publish joins all handlers, so the counters are settled here.
	assert.Equal(t, int64(2), typed.Load())
	assert.Equal(t, int64(1), global.Load())
}

func TestPublishSkipsUnrelatedTypes(t *testing.T) {
	bus := newTestBus(t)

	var calls atomic.Int64
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(e shared.Event) error {
		calls.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(submittedEvent("u1")))
	assert.Zero(t, calls.Load())
}

func TestHandlerFailureIsolation(t *testing.T) {
	bus := newTestBus(t)

	var healthy atomic.Int64
	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		healthy.Add(1)
		return nil
	}))

	err := bus.Publish(submittedEvent("u1"))

	assert.NoError(t, err, "handler errors never surface through Publish")
	assert.Equal(t, int64(1), healthy.Load(), "sibling handler still runs")
	assert.Equal(t, int64(1), bus.Metrics().Snapshot().HandlerFailures)
}

func TestHandlerPanicRecovered(t *testing.T) {
	bus := newTestBus(t)

	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		panic("kaboom")
	}))

	assert.NotPanics(t, func() {
		assert.NoError(t, bus.Publish(submittedEvent("u1")))
	})
	assert.Equal(t, int64(1), bus.Metrics().Snapshot().HandlerFailures)
}

func TestSubscribeValidation(t *testing.T) {
	bus := newTestBus(t)

	assert.Error(t, bus.Subscribe(shared.EventActivitySubmitted, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}

func TestClosedBus(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(submittedEvent("u1")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Publish(submittedEvent("u1")), shared.ErrEventBusClosed,
		"one sentinel, matchable from either package")
	assert.ErrorIs(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close(), "double close is a no-op")
}

func TestMetricsSnapshot(t *testing.T) {
	bus := newTestBus(t)

	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(submittedEvent("u1")))
	require.NoError(t, bus.Publish(submittedEvent("u2")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.Zero(t, snap.HandlerFailures)
	assert.InDelta(t, 1.0, snap.HandlerSuccessRate, 1e-9)
}

func TestNestedPublish(t *testing.T) {
	bus := newTestBus(t)

	var downstream atomic.Int64
	require.NoError(t, bus.Subscribe(shared.EventBadgeEarned, func(e shared.Event) error {
		downstream.Add(1)
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventActivitySubmitted, func(e shared.Event) error {
		badge := reward.NewBadgeEarnedEvent("u1", "big_earner", "coin grant over threshold")
		return bus.Publish(badge)
	}))

	require.NoError(t, bus.Publish(submittedEvent("u1")))
	assert.Equal(t, int64(1), downstream.Load(), "handlers can publish follow-up events")
}
