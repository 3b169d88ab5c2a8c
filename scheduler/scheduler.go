package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobportal/jobportal/webutil"
)

type JobExpirer interface {
	UnpublishExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// TickResult reports what a single maintenance cycle changed.
type TickResult struct {
	JobsUnpublished int64 `json:"jobs_unpublished"`
	TokensPurged    int64 `json:"tokens_purged"`
}

// Scheduler runs periodic maintenance: jobs whose application deadline has
// passed are unpublished and expired revoked tokens are dropped.
type Scheduler struct {
	jobs   JobExpirer
	tokens TokenPurger
	now    func() time.Time
}

func New(jobs JobExpirer, tokens TokenPurger) *Scheduler {
	return &Scheduler{jobs: jobs, tokens: tokens, now: time.Now}
}

// HandleTick is an HTTP handler that triggers a scheduler tick.
// Used by an external cron or manual curl requests.
func (s *Scheduler) HandleTick(w http.ResponseWriter, r *http.Request) error {
	slog.InfoContext(r.Context(), "Scheduler tick triggered via HTTP")

	res, err := s.Tick(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Scheduler tick failed", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"jobs_unpublished": res.JobsUnpublished,
		"tokens_purged":    res.TokensPurged,
	})
	return nil
}

// Tick runs a single maintenance cycle.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	now := s.now().UTC()
	var res TickResult

	n, err := s.jobs.UnpublishExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to unpublish expired jobs: %w", err)
	}
	res.JobsUnpublished = n

	// Token cleanup only keeps the table small; a failure is not fatal.
	if s.tokens != nil {
		purged, err := s.tokens.PurgeExpired(ctx, now)
		if err != nil {
			slog.WarnContext(ctx, "Failed to purge expired revoked tokens", "error", err)
		} else {
			res.TokensPurged = purged
		}
	}

	if res.JobsUnpublished > 0 || res.TokensPurged > 0 {
		slog.InfoContext(ctx, "Scheduler tick finished",
			"jobs_unpublished", res.JobsUnpublished, "tokens_purged", res.TokensPurged)
	}
	return res, nil
}

// Run ticks every interval until ctx is cancelled. A non-positive interval disables it.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				slog.Error("Scheduler tick failed", "error", err)
			}
		}
	}
}
