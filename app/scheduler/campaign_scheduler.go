// Package scheduler moves campaigns along their time-driven transitions
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
)

// CampaignScheduler periodically sweeps campaigns whose windows have moved:
// published campaigns whose purchase window has opened go live, and live or
// published campaigns whose post window has passed are closed. Both moves are
// conditional updates keyed on the status the sweep read, so a concurrent
// manual transition cannot be clobbered.
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
	logger       *log.Logger
	interval     time.Duration
}

func NewCampaignScheduler(campaignRepo repository.CampaignRepository, logger *log.Logger, interval time.Duration) *CampaignScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CampaignScheduler{
		campaignRepo: campaignRepo,
		logger:       logger,
		interval:     interval,
	}
}

// Start runs the sweep loop until the returned cancel function is called
func (s *CampaignScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return cancel
}

// RunOnce performs a single sweep. Exposed so operators and tests can
// trigger the sweep without waiting for the ticker.
func (s *CampaignScheduler) RunOnce(ctx context.Context) {
	now := utils.UTCNow()
	s.activateDue(ctx, now)
	s.closeExpired(ctx, now)
}

// activateDue moves published campaigns whose purchase window has opened to live
func (s *CampaignScheduler) activateDue(ctx context.Context, now time.Time) {
	published := models.CampaignStatusPublished
	due, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{
		Status:                &published,
		PurchaseWindowStarted: &now,
	}, "id ASC", 0, 0)
	if err != nil {
		s.logger.Printf("scheduler: list due campaigns failed: %v", err)
		return
	}

	for _, campaign := range due {
		// Conditional update: a manual move committed after the read above
		// makes this a no-op instead of clobbering it.
		moved, err := s.campaignRepo.TransitionStatus(ctx, campaign.ID,
			[]models.CampaignStatus{models.CampaignStatusPublished},
			models.CampaignStatusLive)
		if err != nil {
			s.logger.Printf("scheduler: activating campaign %s failed: %v", campaign.UUID, err)
			continue
		}
		if moved {
			s.logger.Printf("scheduler: campaign %s is now live", campaign.UUID)
		}
	}
}

// closeExpired closes published and live campaigns whose post window has passed
func (s *CampaignScheduler) closeExpired(ctx context.Context, now time.Time) {
	for _, status := range []models.CampaignStatus{models.CampaignStatusPublished, models.CampaignStatusLive} {
		st := status
		expired, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{
			Status:          &st,
			PostWindowEnded: &now,
		}, "id ASC", 0, 0)
		if err != nil {
			s.logger.Printf("scheduler: list expired campaigns failed: %v", err)
			return
		}

		for _, campaign := range expired {
			moved, err := s.campaignRepo.TransitionStatus(ctx, campaign.ID,
				[]models.CampaignStatus{st},
				models.CampaignStatusClosed)
			if err != nil {
				s.logger.Printf("scheduler: closing campaign %s failed: %v", campaign.UUID, err)
				continue
			}
			if moved {
				s.logger.Printf("scheduler: campaign %s closed, post window ended", campaign.UUID)
			}
		}
	}
}
