package service

import (
	"testing"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatSpan(t *testing.T) {
	start := testutil.Day(0)
	end := testutil.Day(5)

	tests := []struct {
		name       string
		start, end *time.Time
		want       string
	}{
		{"both bounds", &start, &end, "2025-06-16..2025-06-21"},
		{"open end", &start, nil, "2025-06-16.."},
		{"unplanned", nil, nil, ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSpan(tt.start, tt.end))
		})
	}
}

func TestIndexActions(t *testing.T) {
	a := &domain.Action{ID: "a"}
	b := &domain.Action{ID: "b"}

	idx := indexActions([]*domain.Action{a, b})

	assert.Len(t, idx, 2)
	assert.Same(t, b, idx["b"])
}

func TestConfigOrDefault(t *testing.T) {
	assert.Equal(t, config.DefaultConfig(), configOrDefault(nil).Current())

	custom := config.DefaultConfig()
	custom.Thresholds.ApproachDays = 45
	assert.Equal(t, 45, configOrDefault(config.StaticSource(custom)).Current().Thresholds.ApproachDays)
}
