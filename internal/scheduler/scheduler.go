// Package scheduler runs periodic background jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one unit of periodic work. Its context is cancelled after timeout.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration
}

// New builds a Scheduler. Panicking jobs are recovered and logged, and a job
// that is still running when its next tick fires is skipped.
func New(log *zap.Logger, timeout time.Duration) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		log:     log,
		timeout: timeout,
	}
}

// Add registers job under spec, e.g. "@every 10m" or "*/5 * * * *".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
