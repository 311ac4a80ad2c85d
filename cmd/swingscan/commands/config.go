package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/scanconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "스캔 프로파일 관리",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [profile.yaml]",
	Short: "스캔 프로파일 YAML 검증",
	Long: `스캔 프로파일(가중치, 변동성 테이블, 기본값)을 파싱하고 검증합니다.
경로를 생략하면 내장 기본 프로파일을 검사합니다.

Example:
  go run ./cmd/swingscan config check config/scan/default.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	var (
		cfg *scanconfig.Config
		err error
	)

	source := "built-in"
	if len(args) == 1 {
		source = args[0]
		cfg, _, err = scanconfig.Load(source)
	} else {
		cfg = scanconfig.Default()
		err = scanconfig.Validate(cfg)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	hash, err := scanconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash profile: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  Profile   : %s (v%s)\n", cfg.Meta.ProfileID, cfg.Meta.Version)
	fmt.Fprintf(out, "  Source    : %s\n", source)
	fmt.Fprintf(out, "  SHA256    : %s\n", hash)
	PrintSeparator(out)
	for _, p := range contracts.AllRiskProfiles() {
		w := cfg.Weights.For(p)
		fmt.Fprintf(out, "  %-12s: technical=%.2f fundamental=%.2f catalyst=%.2f risk=%.0f%%\n",
			p, w.Technical, w.Fundamental, w.Catalyst, cfg.Risk.RiskPercent.For(p)*100)
	}
	PrintDoubleSeparator(out)
	fmt.Fprintln(out, "✅ Profile is valid")
	return nil
}
