package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"go.uber.org/atomic"
)

// queueUC hands out its pending records once, like a store whose rows
// leave the ready set after being claimed.
type queueUC struct {
	mu      sync.Mutex
	pending []entity.DeliveryRecord
	wake    chan struct{}
	lists   atomic.Int64

	dispatched sync.Map
	count      atomic.Int64
	done       chan struct{}
	want       int64
}

func (q *queueUC) ListReady(context.Context) ([]entity.DeliveryRecord, error) {
	q.lists.Inc()
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out, nil
}

func (q *queueUC) DispatchRecord(_ context.Context, rec entity.DeliveryRecord) error {
	if _, dup := q.dispatched.LoadOrStore(rec.ID, true); dup {
		return errors.New("dispatched twice")
	}
	if q.count.Inc() == q.want {
		close(q.done)
	}
	return nil
}

func (q *queueUC) Wakeups() <-chan struct{} { return q.wake }

func (q *queueUC) add(recs ...entity.DeliveryRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, recs...)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out")
	}
}

func TestWorker_DispatchesEveryReadyRecord(t *testing.T) {
	// Arrange
	q := &queueUC{wake: make(chan struct{}, 1), done: make(chan struct{}), want: 20}
	for i := range 20 {
		q.add(entity.DeliveryRecord{ID: int64(i + 1), Channel: entity.ChannelEmail, State: entity.DeliveryStateQueued})
	}
	w := NewWorker(q, WorkerConfig{Workers: 4, PollInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	// Act
	go func() {
		_ = w.Run(ctx)
		close(stopped)
	}()
	waitFor(t, q.done)
	cancel()
	waitFor(t, stopped)

	// Assert
	if q.count.Load() != 20 {
		t.Fatalf("dispatched %d records", q.count.Load())
	}
	if w.InFlight() != 0 {
		t.Fatalf("in flight after stop: %d", w.InFlight())
	}
}

func TestWorker_WakesEarly(t *testing.T) {
	tests := []struct {
		name string
		wake func(w *Worker, q *queueUC)
	}{
		{name: "submit wakeup", wake: func(_ *Worker, q *queueUC) { q.wake <- struct{}{} }},
		{name: "explicit wake", wake: func(w *Worker, _ *queueUC) { w.Wake() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			q := &queueUC{wake: make(chan struct{}, 1), done: make(chan struct{}), want: 1}
			w := NewWorker(q, WorkerConfig{Workers: 2, PollInterval: time.Hour})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = w.Run(ctx) }()

			// first poll happens right away and finds nothing
			deadline := time.Now().Add(3 * time.Second)
			for q.lists.Load() == 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			// Act
			q.add(entity.DeliveryRecord{ID: 1, Channel: entity.ChannelPush, State: entity.DeliveryStateQueued})
			tt.wake(w, q)

			// Assert
			waitFor(t, q.done)
		})
	}
}

func TestWorker_RunTwice(t *testing.T) {
	// Arrange
	q := &queueUC{wake: make(chan struct{}), done: make(chan struct{})}
	w := NewWorker(q, WorkerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	for !w.running.Load() {
		time.Sleep(time.Millisecond)
	}

	// Act
	err := w.Run(ctx)

	// Assert
	if !errors.Is(err, ErrWorkerRunning) {
		t.Fatalf("expected ErrWorkerRunning, got %v", err)
	}
}
