package config

import (
	"fmt"
	"time"
)

// Thresholds drive milestone status derivation.
type Thresholds struct {
	ApproachDays int `yaml:"approach_days"`
	DangerDays   int `yaml:"danger_days"`
}

// ActionStatusPolicy controls the automatic transitions among
// to_schedule, planned, to_do and in_progress.
type ActionStatusPolicy struct {
	// TodoLeadDays is how many days before the planned start an action
	// moves from planned to to_do.
	TodoLeadDays int `yaml:"todo_lead_days"`
	// StartImpliesInProgress moves an action to in_progress once its planned
	// start has passed, even with zero progress.
	StartImpliesInProgress bool `yaml:"start_implies_in_progress"`
}

// RiskBands are the lowest scores classified as majeur and critique.
type RiskBands struct {
	MajorMin     int  `yaml:"major_min"`
	CriticalMin  int  `yaml:"critical_min"`
	PersistLinks bool `yaml:"persist_links"`
}

// PerformanceBands classify SPI and CPI.
type PerformanceBands struct {
	BehindBelow float64 `yaml:"behind_below"`
	AheadAbove  float64 `yaml:"ahead_above"`
}

// SyncConfig configures the two-track synchronization indicator.
type SyncConfig struct {
	TechnicalAxis string   `yaml:"technical_axis"`
	ExcludedAxes  []string `yaml:"excluded_axes"`
	BandA         float64  `yaml:"band_a"`
	BandB         float64  `yaml:"band_b"`
	TrendNoise    float64  `yaml:"trend_noise"`
	BaselineDays  int      `yaml:"baseline_days"`
}

type DelayApplyMode string

const (
	DelayTransactional DelayApplyMode = "transactional"
	DelaySequential    DelayApplyMode = "sequential"
)

type DelayConfig struct {
	ApplyMode DelayApplyMode `yaml:"apply_mode"`
}

type RecalcConfig struct {
	Interval     time.Duration `yaml:"interval"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// Config is the full externally supplied configuration surface. A value is
// passed explicitly into every computation; nothing reads it as a global.
type Config struct {
	Thresholds        Thresholds         `yaml:"thresholds"`
	ActionPolicy      ActionStatusPolicy `yaml:"action_policy"`
	Risk              RiskBands          `yaml:"risk"`
	Performance       PerformanceBands   `yaml:"performance"`
	Sync              SyncConfig         `yaml:"sync"`
	Delay             DelayConfig        `yaml:"delay"`
	Recalc            RecalcConfig       `yaml:"recalc"`
	MaxRecursionDepth int                `yaml:"max_recursion_depth"`
}

// DefaultConfig returns a Config with the reference portfolio settings.
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			ApproachDays: 30,
			DangerDays:   14,
		},
		ActionPolicy: ActionStatusPolicy{
			TodoLeadDays:           7,
			StartImpliesInProgress: false,
		},
		Risk: RiskBands{
			MajorMin:    9,
			CriticalMin: 13,
		},
		Performance: PerformanceBands{
			BehindBelow: 0.95,
			AheadAbove:  1.05,
		},
		Sync: SyncConfig{
			TechnicalAxis: "technique",
			ExcludedAxes:  []string{"budget", "gouvernance"},
			BandA:         10,
			BandB:         15,
			TrendNoise:    2,
			BaselineDays:  7,
		},
		Delay: DelayConfig{
			ApplyMode: DelayTransactional,
		},
		Recalc: RecalcConfig{
			Interval:     time.Hour,
			InitialDelay: 2 * time.Second,
		},
		MaxRecursionDepth: 50,
	}
}

// Validate rejects configurations that would make derivation ambiguous.
func (c Config) Validate() error {
	if c.Thresholds.DangerDays < 0 || c.Thresholds.ApproachDays < 0 {
		return fmt.Errorf("thresholds must be non-negative")
	}
	if c.Thresholds.DangerDays > c.Thresholds.ApproachDays {
		return fmt.Errorf("danger_days (%d) must not exceed approach_days (%d)",
			c.Thresholds.DangerDays, c.Thresholds.ApproachDays)
	}
	if c.Risk.MajorMin < 1 || c.Risk.CriticalMin > 25 || c.Risk.MajorMin >= c.Risk.CriticalMin {
		return fmt.Errorf("risk bands must satisfy 1 <= major_min < critical_min <= 25")
	}
	if c.Performance.BehindBelow <= 0 || c.Performance.BehindBelow > c.Performance.AheadAbove {
		return fmt.Errorf("performance bands must satisfy 0 < behind_below <= ahead_above")
	}
	if c.Sync.BandA < 0 || c.Sync.BandA > c.Sync.BandB {
		return fmt.Errorf("sync bands must satisfy 0 <= band_a <= band_b")
	}
	if c.Sync.TechnicalAxis == "" {
		return fmt.Errorf("sync.technical_axis is required")
	}
	switch c.Delay.ApplyMode {
	case DelayTransactional, DelaySequential:
	default:
		return fmt.Errorf("unknown delay apply mode %q", c.Delay.ApplyMode)
	}
	if c.Recalc.Interval <= 0 {
		return fmt.Errorf("recalc interval must be positive")
	}
	if c.MaxRecursionDepth <= 0 {
		return fmt.Errorf("max_recursion_depth must be positive")
	}
	return nil
}

// IsExcludedAxis reports whether the axis is left out of the mobilization
// average.
func (s SyncConfig) IsExcludedAxis(axis string) bool {
	for _, a := range s.ExcludedAxes {
		if a == axis {
			return true
		}
	}
	return false
}
