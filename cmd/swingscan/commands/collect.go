package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/collector"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [symbols...]",
	Short: "데이터 수집 후 스냅샷 저장",
	Long: `심볼별 시세/재무를 수집하고 DATABASE_URL 이 설정된 경우 스냅샷을 저장합니다.
심볼을 생략하면 SCAN_SYMBOLS 를 사용합니다.

Example:
  go run ./cmd/swingscan collect
  go run ./cmd/swingscan collect AAPL MSFT`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	symbols := a.cfg.Scan.Symbols
	if len(args) > 0 {
		symbols = args
	}
	symbols = collector.CleanSymbols(symbols, 0)

	if a.repo == nil {
		PrintWarning(cmd.OutOrStdout(), "DATABASE_URL is empty: snapshots will not be saved")
	}

	start := time.Now()
	summary, err := a.collector.Collect(ctx, symbols)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  Requested : %d\n", summary.Requested)
	fmt.Fprintf(out, "  Fetched   : %d\n", summary.Fetched)
	fmt.Fprintf(out, "  Failed    : %d\n", summary.Failed)
	fmt.Fprintf(out, "  Saved     : %d\n", summary.Saved)
	PrintSeparator(out)
	fmt.Fprintf(out, "✅ Completed in %.2fs\n", time.Since(start).Seconds())
	return nil
}
