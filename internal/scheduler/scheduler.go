// Package scheduler runs the periodic exchange rate refresh.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finance-dash/backend/internal/service"
)

// refreshTimeout bounds one scheduled refresh run so a hung provider cannot
// stack runs on top of each other.
const refreshTimeout = 5 * time.Minute

// Scheduler owns the background cron loop. It refreshes the rate of every
// stored currency against the display currency on a fixed schedule, keeping
// summaries usable without on-demand provider calls.
type Scheduler struct {
	cron *cron.Cron
	fx   *service.FxService
	spec string
}

// New creates a Scheduler with the given five-field cron schedule.
func New(fx *service.FxService, spec string) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		fx:   fx,
		spec: spec,
	}
}

// Start registers the refresh job and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("failed to schedule fx refresh %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	refreshed, err := s.fx.RefreshStoredPairs(ctx)
	if err != nil {
		log.Printf("scheduled fx refresh failed: %v", err)
		return
	}
	log.Printf("scheduled fx refresh done, %d pairs refreshed", refreshed)
}
