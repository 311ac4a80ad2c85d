package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/swingscan/pkg/logger"
)

// Scheduler runs registered jobs on cron schedules (with seconds field)
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	opts Options
}

// Options control retries and per-run deadlines
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	RunTimeout time.Duration // 0 = no deadline
}

// DefaultOptions returns the production retry policy
func DefaultOptions() Options {
	return Options{
		MaxRetries: 2,
		RetryDelay: time.Minute,
		RunTimeout: 15 * time.Minute,
	}
}

// New creates a new scheduler
func New(log *logger.Logger, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  log.WithComponent("scheduler"),
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
		history: make(map[string]*JobHistory),
		ctx:     ctx,
		cancel:  cancel,
		opts:    opts,
	}
}

// AddJob registers job under its schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entries[name] = id
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job; its history is dropped too
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.entries, name)
	delete(s.history, name)

	s.logger.WithField("job", name).Info("Job removed from scheduler")
	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow runs a registered job synchronously, outside of its schedule
func (s *Scheduler) RunNow(name string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", name)
	}

	return s.runJob(job), nil
}

// runJob executes a job with retries and records the result
func (s *Scheduler) runJob(job Job) JobResult {
	name := job.Name()
	start := time.Now()

	s.logger.WithField("job", name).Info("Job started")

	var lastErr error
	success := false
	attempts := 0

	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		attempts++
		lastErr = s.runOnce(job)
		if lastErr == nil {
			success = true
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt == s.opts.MaxRetries {
			break
		}

		select {
		case <-s.ctx.Done():
			attempt = s.opts.MaxRetries
		case <-time.After(s.opts.RetryDelay):
		}
	}

	end := time.Now()
	result := JobResult{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Attempts:  attempts,
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.RLock()
	history, ok := s.history[name]
	s.mu.RUnlock()
	if ok {
		history.Add(result)
	}

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Info("Job completed successfully")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

func (s *Scheduler) runOnce(job Job) error {
	ctx := s.ctx
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}
	return job.Run(ctx)
}

// GetJobHistory returns the history for a specific job
func (s *Scheduler) GetJobHistory(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return history, nil
}

// JobNames returns registered job names, sorted
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.history))
	for name, history := range s.history {
		st := JobStats{
			JobName:      name,
			Schedule:     s.jobs[name].Schedule(),
			TotalRuns:    history.Len(),
			FailureCount: len(history.Failed()),
			SuccessRate:  history.SuccessRate(),
		}
		st.SuccessCount = st.TotalRuns - st.FailureCount

		if latest := history.Latest(1); len(latest) == 1 {
			last := latest[0].StartTime
			st.LastRun = &last
			if latest[0].Success {
				st.LastSuccess = &last
			} else {
				st.LastFailure = &last
			}
		}

		stats[name] = st
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
