package scanconfig

import (
	"github.com/wonny/swingscan/internal/risk"
	"github.com/wonny/swingscan/internal/scoring"
	"github.com/wonny/swingscan/internal/selection"
)

// Config는 스캔 프로파일 전체 설정 (가중치 + 리스크 테이블 + 기본값)
type Config struct {
	Meta    Meta              `yaml:"meta" json:"meta"`
	Weights scoring.WeightSet `yaml:"weights" json:"weights"`
	Risk    risk.Params       `yaml:"risk" json:"risk"`
	Scan    ScanDefaults      `yaml:"scan" json:"scan"`
}

// Meta identifies a profile
type Meta struct {
	ProfileID   string `yaml:"profile_id" json:"profile_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// ScanDefaults are used when a request leaves a field unset
type ScanDefaults struct {
	Limit    int     `yaml:"limit" json:"limit"`
	MinScore float64 `yaml:"min_score" json:"min_score"`
	Sector   string  `yaml:"sector" json:"sector"`
}

// Default returns the built-in profile
func Default() *Config {
	return &Config{
		Meta: Meta{
			ProfileID:   "swing_default",
			Version:     "1",
			Description: "built-in weights and volatility tables",
		},
		Weights: scoring.DefaultWeightSet(),
		Risk:    risk.DefaultParams(),
		Scan: ScanDefaults{
			Limit:    selection.DefaultLimit,
			MinScore: 0,
			Sector:   selection.AllSectors,
		},
	}
}

// Params converts the profile into ranking tables
func (c *Config) Params() selection.Params {
	return selection.Params{
		Weights: c.Weights,
		Risk:    c.Risk,
	}
}
