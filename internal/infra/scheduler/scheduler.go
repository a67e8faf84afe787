package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) AddJob(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		if err := job(s.ctx); err != nil {
			s.logger.Warn("scheduled job failed", zap.String("job", name), zap.Duration("took", time.Since(started)), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job complete", zap.String("job", name), zap.Duration("took", time.Since(started)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("scheduled job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", s.Len()))
	<-ctx.Done()
	s.cancel()
	<-s.cron.Stop().Done()
	return nil
}
