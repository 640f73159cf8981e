package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// OptimizerConfig controls the iterative plan optimizer.
type OptimizerConfig struct {
	// Budget settings. A run stops early, with a warning, once either budget
	// is exhausted; the best plan found so far is returned.
	Timeout            time.Duration `json:"timeout"`
	MaxRuleInvocations int           `json:"max_rule_invocations"`

	// Cost-based optimization settings
	EnableCostBasedOptimization bool `json:"enable_cost_based_optimization"`

	// Estimation settings
	UnknownFilterSelectivity float64 `json:"unknown_filter_selectivity"`
	DefaultScanRowCount      float64 `json:"default_scan_row_count"`
}

// DefaultOptimizerConfig returns production-ready defaults.
func DefaultOptimizerConfig() *OptimizerConfig {
	return &OptimizerConfig{
		Timeout:            3 * time.Second,
		MaxRuleInvocations: 10000,

		EnableCostBasedOptimization: true,

		UnknownFilterSelectivity: 0.9,
		DefaultScanRowCount:      1000,
	}
}

// LoadFromEnv overrides config values from environment
// variables. Unset or malformed variables leave the value unchanged.
func (c *OptimizerConfig) LoadFromEnv() {
	if v := os.Getenv("CASCADE_OPTIMIZER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("CASCADE_OPTIMIZER_MAX_RULE_INVOCATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRuleInvocations = n
		}
	}
	if v := os.Getenv("CASCADE_OPTIMIZER_COST_BASED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableCostBasedOptimization = b
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *OptimizerConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("optimizer timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxRuleInvocations <= 0 {
		return fmt.Errorf("max rule invocations must be positive, got %d", c.MaxRuleInvocations)
	}
	if c.UnknownFilterSelectivity <= 0 || c.UnknownFilterSelectivity > 1 {
		return fmt.Errorf("unknown filter selectivity must be in (0, 1], got %v", c.UnknownFilterSelectivity)
	}
	if c.DefaultScanRowCount < 0 {
		return fmt.Errorf("default scan row count must be non-negative, got %v", c.DefaultScanRowCount)
	}
	return nil
}
