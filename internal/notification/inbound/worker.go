package inbound

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/goroutine"
	"go.uber.org/atomic"
)

var ErrWorkerRunning = errors.New("dispatch worker already running")

type WorkerConfig struct {
	Workers      int
	PollInterval time.Duration
}

// Worker is the dispatcher pool. A poller lists ready records and hands each
// to one of Workers goroutines. It polls every PollInterval, or earlier when
// Submit stores records that are ready now or Wake is called.
type Worker struct {
	uc    ucDispatcher
	cfg   WorkerConfig
	nudge chan struct{}

	running  atomic.Bool
	inFlight atomic.Int64
}

func NewWorker(uc ucDispatcher, cfg WorkerConfig) *Worker {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Worker{uc: uc, cfg: cfg, nudge: make(chan struct{}, 1)}
}

// Wake asks the poller to look for ready records without waiting for the
// next tick.
func (w *Worker) Wake() {
	select {
	case w.nudge <- struct{}{}:
	default:
	}
}

// InFlight is the number of records being dispatched right now.
func (w *Worker) InFlight() int64 {
	return w.inFlight.Load()
}

// Run blocks until ctx is done, then waits for in-flight dispatches.
func (w *Worker) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrWorkerRunning
	}
	defer w.running.Store(false)

	slog.InfoContext(ctx, "dispatch worker started", "workers", w.cfg.Workers, "poll_interval", w.cfg.PollInterval.String())

	jobs := make(chan entity.DeliveryRecord)
	pool := goroutine.NewManager(w.cfg.Workers)
	for range w.cfg.Workers {
		pool.Go(ctx, func(ctx context.Context) error {
			// a claimed record finishes its attempt even during shutdown
			ctx = context.WithoutCancel(ctx)
			for rec := range jobs {
				w.dispatch(ctx, rec)
			}
			return nil
		})
	}
	defer func() {
		close(jobs)
		_ = pool.Wait()
		slog.InfoContext(ctx, "dispatch worker stopped")
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case <-w.uc.Wakeups():
		case <-w.nudge:
		}

		w.poll(ctx, jobs)
		timer.Reset(w.cfg.PollInterval)
	}
}

func (w *Worker) poll(ctx context.Context, jobs chan<- entity.DeliveryRecord) {
	records, err := w.uc.ListReady(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list ready deliveries", "error", err)
		return
	}

	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, rec entity.DeliveryRecord) {
	w.inFlight.Inc()
	defer w.inFlight.Dec()

	if err := w.uc.DispatchRecord(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch delivery", "delivery_id", rec.ID, "channel", rec.Channel.String(), "error", err)
	}
}
