package config

import (
	"testing"
	"time"
)

func TestDefaultOptimizerConfig(t *testing.T) {
	cfg := DefaultOptimizerConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestOptimizerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OptimizerConfig)
	}{
		{"zero timeout", func(c *OptimizerConfig) { c.Timeout = 0 }},
		{"zero budget", func(c *OptimizerConfig) { c.MaxRuleInvocations = 0 }},
		{"selectivity too high", func(c *OptimizerConfig) { c.UnknownFilterSelectivity = 1.5 }},
		{"negative row count", func(c *OptimizerConfig) { c.DefaultScanRowCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultOptimizerConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CASCADE_OPTIMIZER_TIMEOUT", "250ms")
	t.Setenv("CASCADE_OPTIMIZER_COST_BASED", "false")

	cfg := DefaultOptimizerConfig()
	cfg.LoadFromEnv()

	if cfg.Timeout != 250*time.Millisecond {
		t.Errorf("expected timeout 250ms, got %v", cfg.Timeout)
	}
	if cfg.EnableCostBasedOptimization {
		t.Error("expected cost-based optimization disabled")
	}
}
