package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/wonny/swingscan/internal/brain"
	"github.com/wonny/swingscan/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintScanResult renders a scan as a table
func PrintScanResult(w io.Writer, r *brain.RunResult) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  Scan      : %s\n", r.ScanID)
	fmt.Fprintf(w, "  Source    : %s\n", r.Source)
	fmt.Fprintf(w, "  Profile   : %s\n", r.Profile)
	fmt.Fprintf(w, "  Sector    : %s\n", sectorLabel(r.Sector))
	fmt.Fprintf(w, "  Capital   : $%.2f\n", r.Capital)
	if r.Quality != nil {
		fmt.Fprintf(w, "  Quality   : %.0f%%\n", r.Quality.QualityScore*100)
	}
	PrintSeparator(w)

	if len(r.Stocks) == 0 {
		fmt.Fprintln(w, "  (no candidates)")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tTICKER\tSCORE\tPRICE\tSTOP\tTARGET\tSHARES\tRISK\tSETUP\tCATALYST")
		for _, s := range r.Stocks {
			if !s.HasTradeLevels() {
				fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t-\t-\t-\t-\t%s\t%s\n",
					s.Rank, s.Ticker, s.FinalScore, s.PriceLabel(), s.SetupType, s.Catalyst)
				continue
			}
			fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%.2f\t%.2f\t%d\t%.2f\t%s\t%s\n",
				s.Rank, s.Ticker, s.FinalScore, s.PriceLabel(),
				s.Targets.StopLoss, s.Targets.Target,
				s.Position.Shares, s.Position.RiskAmount,
				s.SetupType, s.Catalyst)
		}
		tw.Flush()
	}

	printFailures(w, "Not ranked", r.Failures)
	printFailures(w, "Not fetched", r.FetchFailures)
	if len(r.Stale) > 0 {
		fmt.Fprintf(w, "\n⚠️  Served from stored snapshots: %s\n", strings.Join(r.Stale, ", "))
	}
	if r.Quality != nil && !r.Quality.Passed {
		fmt.Fprintf(w, "\n⚠️  Data quality: %s\n", strings.Join(r.Quality.Violations, "; "))
	}
	PrintDoubleSeparator(w)
}

func printFailures(w io.Writer, title string, failures []contracts.ItemFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, f := range failures {
		fmt.Fprintf(w, "  - %s\n", f.Error())
	}
}

func sectorLabel(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}
