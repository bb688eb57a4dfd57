package queue

import (
	"context"
	"testing"
	"time"

	"fairtix/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderEvent() *model.OrderCompletedEvent {
	return &model.OrderCompletedEvent{
		OrderID:     uuid.New(),
		UserID:      uuid.New(),
		EventIDs:    []uuid.UUID{uuid.New()},
		SeatIDs:     []int64{1, 2},
		TotalAmount: 100,
		CompletedAt: time.Now().UTC(),
	}
}

func receive(t *testing.T, ch <-chan Delivery, timeout time.Duration) Delivery {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "channel closed")
		return d
	case <-time.After(timeout):
		t.Fatal("timed out waiting for delivery")
		return Delivery{}
	}
}

func TestMemoryOrderEventQueue_PublishSubscribe(t *testing.T) {
	q := NewMemoryOrderEventQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := newOrderEvent()
	require.NoError(t, q.Publish(ctx, event))

	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	d := receive(t, ch, time.Second)
	assert.Equal(t, event.OrderID, d.Data.OrderID)
	d.Ack()
}

func TestMemoryOrderEventQueue_NackRequeue(t *testing.T) {
	q := NewMemoryOrderEventQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := newOrderEvent()
	require.NoError(t, q.Publish(ctx, event))
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	first := receive(t, ch, time.Second)
	first.Nack(true)

	second := receive(t, ch, time.Second)
	assert.Equal(t, event.OrderID, second.Data.OrderID)
}

func TestMemoryOrderEventQueue_PublishHonorsContext(t *testing.T) {
	q := NewMemoryOrderEventQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Publish(ctx, newOrderEvent())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryOrderEventQueue_SubscribeClosesOnCancel(t *testing.T) {
	q := NewMemoryOrderEventQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestMemoryOrderEventQueue_NackDelaysRedelivery(t *testing.T) {
	q := NewMemoryOrderEventQueue(4, WithRetry(5, 50*time.Millisecond, time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, newOrderEvent()))
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	receive(t, ch, time.Second).Nack(true)
	nackedAt := time.Now()

	receive(t, ch, time.Second)
	assert.GreaterOrEqual(t, time.Since(nackedAt), 50*time.Millisecond)
}

func TestMemoryOrderEventQueue_DropsAfterMaxAttempts(t *testing.T) {
	q := NewMemoryOrderEventQueue(4, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, newOrderEvent()))
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		receive(t, ch, time.Second).Nack(true)
	}

	select {
	case d := <-ch:
		t.Fatalf("event %s delivered after reaching max attempts", d.Data.OrderID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryOrderEventQueue_NackWithoutRequeueDrops(t *testing.T) {
	q := NewMemoryOrderEventQueue(4, WithRetry(5, time.Millisecond, time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, newOrderEvent()))
	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	receive(t, ch, time.Second).Nack(false)

	select {
	case <-ch:
		t.Fatal("event redelivered after nack without requeue")
	case <-time.After(50 * time.Millisecond):
	}
}
