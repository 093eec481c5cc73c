// Package jobs runs background maintenance such as snapshot backups on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs named jobs on cron expressions. Expressions take an
// optional leading seconds field ("0 0 2 * * *"), five-field form
// ("0 2 * * *") or descriptors such as "@daily" and "@every 6h".
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]scheduledJob
}

type scheduledJob struct {
	entry cron.EntryID
	run   func()
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cron.NewParser(
				cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
			)),
			cron.WithChain(
				cron.Recover(cronLogger{logger}),
				cron.SkipIfStillRunning(cronLogger{logger}),
			),
		),
		logger: logger,
		jobs:   make(map[string]scheduledJob),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting job scheduler", zap.Strings("jobs", s.JobNames()))
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping job scheduler")
	return s.cron.Stop()
}

// AddJob registers job under a unique name
func (s *Scheduler) AddJob(name string, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	run := s.instrument(name, job)
	entryID, err := s.cron.AddFunc(cronExpr, run)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = scheduledJob{entry: entryID, run: run}
	s.logger.Info("Added scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr),
	)
	return nil
}

// RunNow runs a registered job synchronously outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}

	job.run()
	return nil
}

// NextRun reports when the job fires next; zero before Start
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(job.entry).Next, true
}

func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(job.entry)
	delete(s.jobs, name)

	s.logger.Info("Removed scheduled job", zap.String("job_name", name))
	return nil
}

// JobNames returns the registered job names in order
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) instrument(name string, job func()) func() {
	return func() {
		start := time.Now()
		s.logger.Debug("Running scheduled job", zap.String("job_name", name))
		job()
		s.logger.Info("Completed scheduled job",
			zap.String("job_name", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
