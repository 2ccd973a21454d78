package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

type ErrorLogger interface {
	Errorf(template string, args ...interface{})
}

// Scheduler runs jobs on six-field cron expressions (seconds first). A job
// still running when its next trigger fires is skipped for that trigger, so
// two runs never share a day's folder.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger ErrorLogger
}

func New(logger ErrorLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

func (s *Scheduler) AddJob(spec string, job func(context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			s.logger.Errorf("Scheduled job failed: %v", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the context handed to running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}
