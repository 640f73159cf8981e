package feature

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	m := NewManager()

	if !m.IsEnabled(CostBasedOptimization) {
		t.Error("cost_based_optimization should default to enabled")
	}
	if m.IsEnabled(DebugLogging) {
		t.Error("debug_logging should default to disabled")
	}
	if m.IsEnabled(Flag("no_such_flag")) {
		t.Error("unknown flags should report disabled")
	}
}

func TestEnableDisable(t *testing.T) {
	m := NewManager()

	m.Disable(LimitPushdown)
	if m.IsEnabled(LimitPushdown) {
		t.Error("flag should be disabled")
	}

	m.Enable(LimitPushdown)
	if !m.IsEnabled(LimitPushdown) {
		t.Error("flag should be enabled")
	}
}

func TestReset(t *testing.T) {
	m := NewManager()

	m.Disable(CostBasedOptimization)
	m.Enable(DebugLogging)
	m.Reset()

	if !m.IsEnabled(CostBasedOptimization) {
		t.Error("reset should restore cost_based_optimization default")
	}
	if m.IsEnabled(DebugLogging) {
		t.Error("reset should restore debug_logging default")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CASCADE_FEATURE_EXPERIMENTAL_JOIN_SWAP", "false")

	m := NewManager()
	if m.IsEnabled(ExperimentalJoinSwap) {
		t.Error("environment override should disable experimental_join_swap")
	}
}

func TestMetadata(t *testing.T) {
	m := NewManager()

	meta, ok := m.GetMetadata(ExperimentalJoinSwap)
	if !ok {
		t.Fatal("metadata should exist for registered flag")
	}
	if meta.Stability != "experimental" {
		t.Errorf("expected experimental stability, got %q", meta.Stability)
	}

	if _, ok := m.GetMetadata(Flag("no_such_flag")); ok {
		t.Error("metadata should not exist for unknown flag")
	}
}
