package infra

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"pulsetrade/internal/usecase"
)

// Scheduler paces the engine: one ProcessCycle per polling interval
type Scheduler struct {
	cron        *cron.Cron
	engine      *usecase.EngineService
	intervalSec int
}

// NewScheduler creates a new scheduler
func NewScheduler(engine *usecase.EngineService, intervalSec int) *Scheduler {
	if intervalSec < 1 {
		intervalSec = 1
	}
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		engine:      engine,
		intervalSec: intervalSec,
	}
}

// Start starts the cycle schedule
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %ds", s.intervalSec)
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.engine.ProcessCycle(ctx); err != nil {
			log.Printf("ERROR: engine cycle failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[OK] Scheduler started (every %ds)", s.intervalSec)
	return nil
}

// RunNow triggers one cycle outside the schedule
func (s *Scheduler) RunNow() error {
	return s.engine.ProcessCycle(context.Background())
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[OK] Scheduler stopped")
}
