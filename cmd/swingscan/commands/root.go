package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	profileFile string
	logFormat   string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swingscan",
	Short: "swingscan - 스윙 트레이딩 후보 스코어링/랭킹",
	Long: `swingscan CLI

Alpha Vantage 시세/재무 데이터를 수집하고
기술/펀더멘털/카탈리스트 점수로 스윙 후보를 랭킹합니다.

Usage:
  go run ./cmd/swingscan [command]

Examples:
  go run ./cmd/swingscan scan --demo
  go run ./cmd/swingscan scan --profile aggressive --sector technology
  go run ./cmd/swingscan api
  go run ./cmd/swingscan collect
  go run ./cmd/swingscan scheduler start
  go run ./cmd/swingscan config check config/scan/default.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&profileFile, "scan-profile", "", "scan profile YAML (default: SCAN_PROFILE_FILE or built-in)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json|console)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
