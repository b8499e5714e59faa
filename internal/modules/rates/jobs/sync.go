// Package jobs provides scheduled background jobs for the rates module.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates"
)

// SyncJob periodically warms the rate caches for all supported pairs so
// user-triggered quote requests rarely pay provider latency.
type SyncJob struct {
	service *rates.Service
	timeout time.Duration
	log     zerolog.Logger
}

// NewSyncJob creates a new rate sync job.
func NewSyncJob(service *rates.Service, timeout time.Duration, log zerolog.Logger) *SyncJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &SyncJob{
		service: service,
		timeout: timeout,
		log:     log.With().Str("job", "rate_sync").Logger(),
	}
}

// Run executes one sync pass.
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.service.SyncRates(ctx); err != nil {
		j.log.Error().Err(err).Msg("Rate sync failed")
		return err
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *SyncJob) Name() string {
	return "rate_sync"
}
