package scheduler

import (
	"context"
	"sync"
	"time"
)

// Job is one unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error
	// Schedule is a six-field cron expression, e.g. "0 30 16 * * 1-5"
	Schedule() string
}

// JobResult records one execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobHistory is a bounded, concurrency-safe log of results (oldest first)
type JobHistory struct {
	mu      sync.RWMutex
	results []JobResult
}

// Add appends r, evicting the oldest entry beyond maxHistory
func (h *JobHistory) Add(r JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, r)
	if over := len(h.results) - maxHistory; over > 0 {
		h.results = append(h.results[:0:0], h.results[over:]...)
	}
}

// Len returns the number of recorded runs
func (h *JobHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.results) {
		n = len(h.results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return append([]JobResult(nil), h.results[len(h.results)-n:]...)
}

// Failed returns every failed result
func (h *JobHistory) Failed() []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failed := make([]JobResult, 0)
	for _, r := range h.results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is the share of successful runs (0 with no history)
func (h *JobHistory) SuccessRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.results))
}
