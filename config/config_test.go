package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolConfigSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   PoolConfig
		want PoolConfig
	}{
		{
			name: "valid values untouched",
			in:   PoolConfig{MinWorkers: 2, MaxWorkers: 16, WorkersPerBatch: 1.5, BatchSize: 250},
			want: PoolConfig{MinWorkers: 2, MaxWorkers: 16, WorkersPerBatch: 1.5, BatchSize: 250},
		},
		{
			name: "zero min raised to one",
			in:   PoolConfig{MinWorkers: 0, MaxWorkers: 4, WorkersPerBatch: 1, BatchSize: 10},
			want: PoolConfig{MinWorkers: 1, MaxWorkers: 4, WorkersPerBatch: 1, BatchSize: 10},
		},
		{
			name: "max below min raised to min",
			in:   PoolConfig{MinWorkers: 8, MaxWorkers: 2, WorkersPerBatch: 1, BatchSize: 10},
			want: PoolConfig{MinWorkers: 8, MaxWorkers: 8, WorkersPerBatch: 1, BatchSize: 10},
		},
		{
			name: "non-positive scaling factor defaulted",
			in:   PoolConfig{MinWorkers: 1, MaxWorkers: 4, WorkersPerBatch: -3, BatchSize: 0},
			want: PoolConfig{MinWorkers: 1, MaxWorkers: 4, WorkersPerBatch: 1, BatchSize: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.Sanitize()
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestRetryConfigSanitize(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 0, BaseDelay: -1, MaxDelay: 0, JitterFraction: 2}
	cfg.Sanitize()

	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, cfg.BaseDelay, cfg.MaxDelay)
	assert.Equal(t, 1.0, cfg.JitterFraction)
}

func TestBreakerConfigSanitize(t *testing.T) {
	cfg := BreakerConfig{FailureThreshold: 0, CoolDown: 0}
	cfg.Sanitize()

	assert.Equal(t, 1, cfg.FailureThreshold)
	assert.Equal(t, time.Second, cfg.CoolDown)
}

func TestLookupConfigSanitize(t *testing.T) {
	cfg := LookupConfig{MaxParams: 5000, Table: ""}
	cfg.Sanitize()

	assert.Equal(t, 999, cfg.MaxParams, "SQLite bind variable ceiling enforced")
	assert.Equal(t, "dnc_numbers", cfg.Table)

	cfg = LookupConfig{MaxParams: 0, Table: "numbers"}
	cfg.Sanitize()
	assert.Equal(t, 1, cfg.MaxParams)
	assert.Equal(t, "numbers", cfg.Table)
}

func TestEngineConfigSanitize(t *testing.T) {
	cfg := EngineConfig{BatchSize: 0}
	cfg.Sanitize()
	assert.Equal(t, 1, cfg.BatchSize)

	cfg = EngineConfig{BatchSize: 50000}
	cfg.Sanitize()
	assert.Equal(t, 10000, cfg.BatchSize)
}

func TestObservabilityMetricsSanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()
	assert.False(t, cfg.IsEnabled(), "blank address disables metrics")
}
