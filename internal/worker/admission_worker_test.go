package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fairtix/internal/queue"
	"fairtix/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEvents struct {
	ids []uuid.UUID
	err error
}

func (s staticEvents) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

// flakyAdmitter 指定的活動永遠失敗，其餘轉給真正的 AdmissionService
type flakyAdmitter struct {
	BatchAdmitter
	broken uuid.UUID

	mu    sync.Mutex
	calls map[uuid.UUID]int
}

func (a *flakyAdmitter) AdmitBatch(ctx context.Context, eventID uuid.UUID, rate int) (int, error) {
	a.mu.Lock()
	if a.calls == nil {
		a.calls = make(map[uuid.UUID]int)
	}
	a.calls[eventID]++
	a.mu.Unlock()

	if eventID == a.broken {
		return 0, errors.New("redis: connection pool timeout")
	}
	return a.BatchAdmitter.AdmitBatch(ctx, eventID, rate)
}

func (a *flakyAdmitter) callCount(eventID uuid.UUID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[eventID]
}

func TestAdmissionWorker_TickIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	admission := service.NewAdmissionService(queue.NewMemoryWaitingRoomStore(), time.Minute)
	broken, healthy := uuid.New(), uuid.New()

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, u := range users {
		_, err := admission.JoinWaitingRoom(ctx, u, healthy)
		require.NoError(t, err)
	}

	admitter := &flakyAdmitter{BatchAdmitter: admission, broken: broken}
	w := NewAdmissionWorker(staticEvents{ids: []uuid.UUID{broken, healthy}}, admitter, ConstantRate(2), time.Hour)

	admitted := w.Tick(ctx)

	assert.Equal(t, 2, admitted)
	assert.Equal(t, 1, admitter.callCount(broken))
	for i, u := range users {
		active, err := admission.IsActive(ctx, u, healthy)
		require.NoError(t, err)
		assert.Equal(t, i < 2, active)
	}
}

func TestAdmissionWorker_TickListFailure(t *testing.T) {
	admitter := &flakyAdmitter{}
	w := NewAdmissionWorker(staticEvents{err: errors.New("db down")}, admitter, ConstantRate(10), time.Hour)

	assert.Zero(t, w.Tick(context.Background()))
}

func TestAdmissionWorker_RunKeepsTickingAndStopsOnCancel(t *testing.T) {
	admission := service.NewAdmissionService(queue.NewMemoryWaitingRoomStore(), time.Minute)
	broken := uuid.New()
	admitter := &flakyAdmitter{BatchAdmitter: admission, broken: broken}
	w := NewAdmissionWorker(staticEvents{ids: []uuid.UUID{broken}}, admitter, ConstantRate(1), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return admitter.callCount(broken) >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestConstantRate(t *testing.T) {
	rate := ConstantRate(500)
	assert.Equal(t, 500, rate(context.Background(), uuid.New()))
}
