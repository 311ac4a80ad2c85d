package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/swingscan/internal/collector"
	"github.com/wonny/swingscan/pkg/logger"
)

// CollectJob fetches the configured symbols and stores their snapshots
// ⭐ SSOT: 수집 스케줄은 이 Job에서만
type CollectJob struct {
	collector *collector.Collector
	symbols   []string
	schedule  string
	logger    *logger.Logger
}

// NewCollectJob creates a new collect job
func NewCollectJob(col *collector.Collector, symbols []string, schedule string, log *logger.Logger) *CollectJob {
	return &CollectJob{
		collector: col,
		symbols:   symbols,
		schedule:  schedule,
		logger:    log.WithField("job", "collect"),
	}
}

// Name returns the job name
func (j *CollectJob) Name() string {
	return "collect"
}

// Schedule returns the cron schedule (default: 16:30 on weekdays, after the US close)
func (j *CollectJob) Schedule() string {
	return j.schedule
}

// Run executes one collection pass. Partial failures are logged;
// the run fails only when nothing could be fetched or the store rejects the batch.
func (j *CollectJob) Run(ctx context.Context) error {
	summary, err := j.collector.Collect(ctx, j.symbols)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"requested": summary.Requested,
		"fetched":   summary.Fetched,
		"failed":    summary.Failed,
		"saved":     summary.Saved,
	}).Info("Collection pass finished")

	if summary.Requested > 0 && summary.Fetched == 0 {
		return fmt.Errorf("no symbols fetched (%d requested)", summary.Requested)
	}
	return nil
}
