package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/brain"
	"github.com/wonny/swingscan/internal/collector"
	"github.com/wonny/swingscan/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "1회 스캔 (수집 → 스코어링 → 랭킹)",
	Long: `심볼을 수집하고 점수를 계산해 상위 후보를 출력합니다.
심볼을 생략하면 SCAN_SYMBOLS 를 사용합니다.

Example:
  go run ./cmd/swingscan scan --demo
  go run ./cmd/swingscan scan AAPL NVDA AMD --profile aggressive
  go run ./cmd/swingscan scan --sector technology --min-score 7 --json`,
	RunE: runScan,
}

var (
	scanDemo     bool
	scanProfile  string
	scanSector   string
	scanLimit    int
	scanCapital  float64
	scanMinScore float64
	scanJSON     bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanDemo, "demo", false, "rank the built-in demo fixture without fetching")
	scanCmd.Flags().StringVar(&scanProfile, "profile", "", "risk profile: conservative|moderate|aggressive")
	scanCmd.Flags().StringVar(&scanSector, "sector", "", "sector filter (all = none)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "number of candidates")
	scanCmd.Flags().Float64Var(&scanCapital, "capital", 0, "account capital for position sizing")
	scanCmd.Flags().Float64Var(&scanMinScore, "min-score", 0, "drop candidates below this score")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print JSON instead of a table")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	config := brain.RunConfig{
		Symbols:  a.cfg.Scan.Symbols,
		Profile:  a.defaultProfile(),
		Sector:   a.profile.Scan.Sector,
		Capital:  a.cfg.Scan.Capital,
		Limit:    a.defaultLimit(),
		MinScore: a.defaultMinScore(),
		Demo:     scanDemo,
	}

	if len(args) > 0 {
		config.Symbols = args
	}
	config.Symbols = collector.CleanSymbols(config.Symbols, a.cfg.Scan.MaxSymbols)

	if scanProfile != "" {
		profile, err := contracts.ParseRiskProfile(scanProfile)
		if err != nil {
			return fmt.Errorf("--profile: %w", err)
		}
		config.Profile = profile
	}
	if scanSector != "" {
		config.Sector = strings.ToLower(strings.TrimSpace(scanSector))
	}
	if scanLimit != 0 {
		config.Limit = scanLimit
	}
	if scanCapital != 0 {
		if scanCapital < 0 {
			return fmt.Errorf("--capital must be > 0")
		}
		config.Capital = scanCapital
	}
	if cmd.Flags().Changed("min-score") {
		config.MinScore = scanMinScore
	}

	result, err := a.orchestrator.Run(ctx, config)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if scanJSON {
		return PrintJSON(cmd.OutOrStdout(), result)
	}
	PrintScanResult(cmd.OutOrStdout(), result)
	return nil
}
