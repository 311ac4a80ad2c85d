package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/collector"
	"github.com/wonny/swingscan/internal/scheduler"
	"github.com/wonny/swingscan/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `주기적 데이터 수집 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/swingscan scheduler start
  go run ./cmd/swingscan scheduler run collect`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- collect: COLLECT_SCHEDULE (기본: 평일 16:30, 장 마감 후 수집)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the app and registers every job
func initScheduler(ctx context.Context) (*scheduler.Scheduler, *app, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log, scheduler.DefaultOptions())

	symbols := collector.CleanSymbols(a.cfg.Scan.Symbols, 0)
	collectJob := jobs.NewCollectJob(a.collector, symbols, a.cfg.Scan.CollectSchedule, a.log)
	if err := sched.AddJob(collectJob); err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("add collect job: %w", err)
	}

	return sched, a, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, a, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	if a.repo == nil {
		PrintWarning(cmd.OutOrStdout(), "DATABASE_URL is empty: collected snapshots will not be saved")
	}

	sched.Start()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✅ Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for name, st := range sched.GetJobStats() {
		fmt.Fprintf(out, "  - %s (%s)\n", name, st.Schedule)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Registered jobs:")
	stats := sched.GetJobStats()
	for _, name := range sched.JobNames() {
		fmt.Fprintf(out, "  - %s (%s)\n", name, stats[name].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, a, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()
	defer sched.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Running job: %s\n", jobName)

	result, err := sched.RunNow(jobName)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Job %s completed in %.2fs\n", jobName, result.Duration.Seconds())
	return nil
}
