package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/hrnotify/internal/pkg/goerror"
)

var errStaleSending = errors.New("delivery stalled in sending")

// RecoverStale fails records stuck in sending longer than StaleAfter, which
// happens when a worker dies between claim and result. The stuck attempt is
// counted, so a record that keeps stalling still ends terminal.
func (s *Usecase) RecoverStale(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "RecoverStale")
	defer span.End()

	before := s.clock.Now().Add(-s.cfg.StaleAfter)
	records, err := s.repoDB.ListStaleSending(ctx, before, s.cfg.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list stale deliveries", "error", err)
		return 0, goerror.NewServer(err)
	}

	recovered := 0
	for _, rec := range records {
		next, err := s.markFailed(ctx, rec, rec.AttemptCount+1, errStaleSending)
		if err != nil {
			return recovered, err
		}
		if next != nil {
			recovered++
		}
	}

	if recovered > 0 {
		slog.WarnContext(ctx, "recovered stale deliveries", "count", recovered, "stale_before", before)
	}

	return recovered, nil
}
