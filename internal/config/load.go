package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty or the file does not exist), then PILOTAGE_* environment
// overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envInt("PILOTAGE_APPROACH_DAYS", &cfg.Thresholds.ApproachDays)
	envInt("PILOTAGE_DANGER_DAYS", &cfg.Thresholds.DangerDays)
	envInt("PILOTAGE_TODO_LEAD_DAYS", &cfg.ActionPolicy.TodoLeadDays)
	envBool("PILOTAGE_START_IMPLIES_IN_PROGRESS", &cfg.ActionPolicy.StartImpliesInProgress)
	envInt("PILOTAGE_RISK_MAJOR_MIN", &cfg.Risk.MajorMin)
	envInt("PILOTAGE_RISK_CRITICAL_MIN", &cfg.Risk.CriticalMin)
	envBool("PILOTAGE_RISK_PERSIST_LINKS", &cfg.Risk.PersistLinks)
	envFloat("PILOTAGE_PERF_BEHIND_BELOW", &cfg.Performance.BehindBelow)
	envFloat("PILOTAGE_PERF_AHEAD_ABOVE", &cfg.Performance.AheadAbove)
	envFloat("PILOTAGE_SYNC_BAND_A", &cfg.Sync.BandA)
	envFloat("PILOTAGE_SYNC_BAND_B", &cfg.Sync.BandB)
	envFloat("PILOTAGE_SYNC_TREND_NOISE", &cfg.Sync.TrendNoise)
	if v := os.Getenv("PILOTAGE_SYNC_TECHNICAL_AXIS"); v != "" {
		cfg.Sync.TechnicalAxis = v
	}
	if v := os.Getenv("PILOTAGE_SYNC_EXCLUDED_AXES"); v != "" {
		var axes []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				axes = append(axes, a)
			}
		}
		cfg.Sync.ExcludedAxes = axes
	}
	if v := os.Getenv("PILOTAGE_DELAY_APPLY_MODE"); v != "" {
		cfg.Delay.ApplyMode = DelayApplyMode(v)
	}
	envDuration("PILOTAGE_RECALC_INTERVAL", &cfg.Recalc.Interval)
	envDuration("PILOTAGE_RECALC_INITIAL_DELAY", &cfg.Recalc.InitialDelay)
	envInt("PILOTAGE_MAX_RECURSION_DEPTH", &cfg.MaxRecursionDepth)
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
