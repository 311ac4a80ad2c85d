package scanconfig

import (
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/selection"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Weights ===
	for _, p := range contracts.AllRiskProfiles() {
		if err := cfg.Weights.For(p).Validate(); err != nil {
			return ValidationError{fmt.Sprintf("weights.%s", p), err.Error()}
		}
	}

	// === Risk ===
	for sector := range cfg.Risk.Volatility.Sectors {
		if !knownSector(string(sector)) {
			return ValidationError{"risk.volatility.sectors", fmt.Sprintf("unknown sector %q", sector)}
		}
	}
	if err := cfg.Risk.Validate(); err != nil {
		return ValidationError{"risk", err.Error()}
	}

	// === Scan ===
	if cfg.Scan.Limit < 0 {
		return ValidationError{"scan.limit", "must be >= 0"}
	}
	if cfg.Scan.MinScore < 0 || cfg.Scan.MinScore > 10 {
		return ValidationError{"scan.min_score", "must be in [0, 10]"}
	}
	if s := cfg.Scan.Sector; s != "" && s != selection.AllSectors {
		if !knownSector(s) {
			return ValidationError{"scan.sector", fmt.Sprintf("unknown sector %q", s)}
		}
	}

	return nil
}

// knownSector requires the canonical lower-case name
func knownSector(s string) bool {
	for _, known := range contracts.AllSectors() {
		if s == string(known) {
			return true
		}
	}
	return false
}
