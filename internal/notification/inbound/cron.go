package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/hrnotify/internal/pkg/config"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"github.com/shandysiswandi/hrnotify/internal/pkg/uid"
)

const (
	defaultRecoverStaleSpec = "@every 1m"
	// quiet hours and weekday windows usually end on a minute boundary
	defaultWakeSpec = "* * * * *"
	cronJobTimeout  = time.Minute
)

// RegisterCron schedules stale claim recovery and the minute wake of the
// dispatcher. The caller starts and stops the returned scheduler.
func RegisterCron(cfg config.Config, uc ucRecovery, worker *Worker, uuid uid.StringID) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	recoverSpec := cfg.GetString("modules.notification.cron.recover_stale")
	if recoverSpec == "" {
		recoverSpec = defaultRecoverStaleSpec
	}
	if _, err := c.AddFunc(recoverSpec, func() {
		ctx, cancel := context.WithTimeout(instrument.SetCorrelationID(context.Background(), uuid.Generate()), cronJobTimeout)
		defer cancel()

		if _, err := uc.RecoverStale(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to recover stale deliveries", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	wakeSpec := cfg.GetString("modules.notification.cron.wake")
	if wakeSpec == "" {
		wakeSpec = defaultWakeSpec
	}
	if _, err := c.AddFunc(wakeSpec, worker.Wake); err != nil {
		return nil, err
	}

	return c, nil
}

// cronLogger sends scheduler logs to slog. Info is debug level since cron
// logs every wake up.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
