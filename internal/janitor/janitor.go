// Package janitor periodically removes drafts left behind by a publish whose
// source-draft delete failed.
package janitor

import (
	"context"
	"time"

	"github.com/debemdeboas/quill/internal/metrics"
	"github.com/debemdeboas/quill/internal/repository/editor"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var janitorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	janitorLogger = l
}

const sweepTimeout = time.Minute

type Janitor struct {
	sweeper editor.Sweeper
	cron    *cron.Cron
}

func New(sweeper editor.Sweeper) *Janitor {
	return &Janitor{
		sweeper: sweeper,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start schedules Sweep using a standard cron spec or a descriptor such as "@every 15m".
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = j.Sweep(ctx)
	}); err != nil {
		return errors.Wrapf(err, "invalid janitor schedule %q", schedule)
	}

	j.cron.Start()
	janitorLogger.Info().Str("schedule", schedule).Msg("Janitor started")
	return nil
}

// Stop waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	n, err := j.sweeper.DeletePublishedDrafts(ctx)
	if err != nil {
		janitorLogger.Error().Err(err).Msg("Failed to remove published drafts")
		return 0, err
	}
	if n > 0 {
		metrics.StrayDrafts.WithLabelValues("janitor").Add(float64(n))
		janitorLogger.Info().Int64("removed", n).Msg("Removed published drafts")
	}
	return n, nil
}
