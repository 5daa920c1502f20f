package jobs

import (
	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/modules/deals"
)

// RefreshJob periodically recomputes the persisted distribution for every
// deal with a stored cash flow series, so the records stay current after
// structures or flows change outside the request path.
type RefreshJob struct {
	service *deals.Service
	log     zerolog.Logger
}

// NewRefreshJob creates a new distribution refresh job.
func NewRefreshJob(service *deals.Service, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		log:     log.With().Str("job", "distribution_refresh").Logger(),
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "distribution_refresh"
}

// Run executes the refresh.
func (j *RefreshJob) Run() error {
	refreshed, err := j.service.RefreshAll()
	if err != nil {
		return err
	}

	j.log.Info().Int("refreshed", refreshed).Msg("Distribution refresh completed")
	return nil
}
