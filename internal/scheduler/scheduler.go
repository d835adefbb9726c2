// Package scheduler drives recurring pipeline runs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/edge10/backend/pkg/logger"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps a seconds-granularity cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.WithField("component", "scheduler"),
	}
}

// AddJob registers a job under a cron expression.
func (s *Scheduler) AddJob(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		log := s.log.WithField("job", job.Name())
		log.Info("Job started")

		if err := job.Run(context.Background()); err != nil {
			log.WithError(err).Error("Job failed")
			return
		}
		log.WithField("duration", time.Since(start).String()).Info("Job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.log.WithFields(map[string]interface{}{
		"job":  job.Name(),
		"spec": spec,
	}).Info("Registered job")
	return nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}
