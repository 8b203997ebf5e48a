package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/monikerhq/moniker/internal/metrics"
	"github.com/monikerhq/moniker/internal/repository"
	"github.com/robfig/cron/v3"
)

// Janitor periodically purges tokens past any possible validity window
// and expired session rows. Expired tokens are merely rejected at
// consumption time; this keeps the tables from growing without bound.
type Janitor struct {
	tokens   repository.TokenRepository
	sessions repository.SessionRepository
	schedule cron.Schedule
	// retention must be at least the longest token validity window
	// (the activation TTL), or unexpired links would be purged early.
	retention time.Duration
	logger    *slog.Logger
}

func New(tokens repository.TokenRepository, sessions repository.SessionRepository, cronExpr string, retention time.Duration, logger *slog.Logger) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		tokens:    tokens,
		sessions:  sessions,
		schedule:  schedule,
		retention: retention,
		logger:    logger.With("component", "janitor"),
	}, nil
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "retention", j.retention)

	for {
		timer := time.NewTimer(time.Until(j.schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("janitor shut down")
			return
		case <-timer.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one purge cycle.
func (j *Janitor) Sweep(ctx context.Context) {
	now := time.Now()

	purgedTokens, err := j.tokens.DeleteOlderThan(ctx, now.Add(-j.retention))
	if err != nil {
		j.logger.Error("purge stale tokens", "error", err)
	} else if purgedTokens > 0 {
		metrics.JanitorPurgedTotal.WithLabelValues("tokens").Add(float64(purgedTokens))
		j.logger.Info("purged stale tokens", "count", purgedTokens)
	}

	purgedSessions, err := j.sessions.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("purge expired sessions", "error", err)
	} else if purgedSessions > 0 {
		metrics.JanitorPurgedTotal.WithLabelValues("sessions").Add(float64(purgedSessions))
		j.logger.Info("purged expired sessions", "count", purgedSessions)
	}
}
