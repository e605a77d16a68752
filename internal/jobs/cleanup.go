package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/repository"
)

// CleanupJob periodically purges expired portal tokens. Expiry is already
// enforced at lookup time; this sweep just keeps the table from growing
// with dead rows.
type CleanupJob struct {
	tokenRepo repository.PortalTokenRepository
	interval  time.Duration
	done      chan struct{}
}

func NewCleanupJob(tokenRepo repository.PortalTokenRepository, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		tokenRepo: tokenRepo,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to cleanup expired portal tokens")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up expired portal tokens")
	}
}
