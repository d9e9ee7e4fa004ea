package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"RuleBadge/internal/runner"
)

// Scheduler runs the pipeline on a cron schedule. A tick that fires while
// the previous run is still going is skipped, so runs never overlap.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *runner.Runner
	RulesPath string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r *runner.Runner, rulesPath string) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Runner:    r,
		RulesPath: rulesPath,
		Ctx:       ctx,
	}
}

// Register adds the pipeline task under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the task immediately (for RUN_ON_START / --now).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	if s.Ctx.Err() != nil {
		return
	}
	log.Println("[INFO] running scheduled pass")
	if _, err := s.Runner.Run(s.Ctx, s.RulesPath); err != nil {
		log.Printf("[ERROR] scheduled pass: %v", err)
	}
}
