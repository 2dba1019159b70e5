package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DeadlineWorker periodically finalizes windowed attempts whose window
// closed more than a grace period ago without the student calling finalize.
// The scoring is the same
// count of correct answers the finalize endpoint uses, so running both is
// harmless. Disabled by default; clients that always finalize do not need
// it.
type DeadlineWorker struct {
	pool     *pgxpool.Pool
	interval time.Duration
	grace    time.Duration
	log      zerolog.Logger
}

// NewDeadlineWorker creates a new DeadlineWorker. grace is how long past a
// window's end an attempt may stay open before the sweep finalizes it.
func NewDeadlineWorker(pool *pgxpool.Pool, interval, grace time.Duration, log zerolog.Logger) *DeadlineWorker {
	return &DeadlineWorker{
		pool:     pool,
		interval: interval,
		grace:    grace,
		log:      log.With().Str("component", "deadline_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *DeadlineWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *DeadlineWorker) sweep(ctx context.Context) {
	tag, err := w.pool.Exec(ctx, `
		UPDATE attempts a
		SET score = (
			SELECT COUNT(*) FROM attempt_answers aa
			WHERE aa.attempt_id = a.id AND aa.is_correct
		),
		finalized_at = NOW()
		FROM exam_windows w
		WHERE a.window_id = w.id
		  AND a.finalized_at IS NULL
		  AND w.ends_at + ($1 * interval '1 second') < NOW()`,
		int64(w.grace.Seconds()))
	if err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		w.log.Info().Int64("finalized", n).Msg("finalized expired attempts")
	}
}
