package feature

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Flag represents a feature flag.
type Flag string

// Feature flags for CascadeDB.
const (
	// Optimizer flags
	CostBasedOptimization Flag = "cost_based_optimization"
	IterativeOptimization Flag = "iterative_optimization"

	// Rule flags
	FilterSimplification Flag = "filter_simplification"
	LimitPushdown        Flag = "limit_pushdown"
	ProjectionPruning    Flag = "projection_pruning"

	// Monitoring & Debug
	QueryProfiling Flag = "query_profiling"
	DebugLogging   Flag = "debug_logging"

	// Experimental features
	ExperimentalJoinSwap Flag = "experimental_join_swap"
)

// FlagMetadata contains metadata about a feature flag.
type FlagMetadata struct {
	Name         Flag
	Description  string
	DefaultValue bool
	Category     string
	Stability    string // "stable", "beta", "experimental"
}

// Manager manages feature flags.
type Manager struct {
	flags    map[Flag]*flagState
	mu       sync.RWMutex
	metadata map[Flag]*FlagMetadata
}

// flagState represents the state of a single flag.
type flagState struct {
	enabled atomic.Bool
	envVar  string
}

// Global feature flag manager.
var globalManager = NewManager()

// NewManager creates a feature flag manager with all flags registered and
// environment overrides applied.
func NewManager() *Manager {
	m := &Manager{
		flags:    make(map[Flag]*flagState),
		metadata: make(map[Flag]*FlagMetadata),
	}
	m.registerFlags()
	m.loadFromEnvironment()
	return m
}

func (m *Manager) registerFlags() {
	m.register(CostBasedOptimization, &FlagMetadata{
		Name:         CostBasedOptimization,
		Description:  "Enable cost-based plan transformations",
		DefaultValue: true,
		Category:     "optimizer",
		Stability:    "stable",
	})

	m.register(IterativeOptimization, &FlagMetadata{
		Name:         IterativeOptimization,
		Description:  "Enable the iterative rule-based optimizer",
		DefaultValue: true,
		Category:     "optimizer",
		Stability:    "stable",
	})

	m.register(FilterSimplification, &FlagMetadata{
		Name:         FilterSimplification,
		Description:  "Enable filter merging and trivial-filter removal",
		DefaultValue: true,
		Category:     "rules",
		Stability:    "stable",
	})

	m.register(LimitPushdown, &FlagMetadata{
		Name:         LimitPushdown,
		Description:  "Enable pushing limits below projections and merging nested limits",
		DefaultValue: true,
		Category:     "rules",
		Stability:    "stable",
	})

	m.register(ProjectionPruning, &FlagMetadata{
		Name:         ProjectionPruning,
		Description:  "Enable removal of identity projections",
		DefaultValue: true,
		Category:     "rules",
		Stability:    "stable",
	})

	m.register(QueryProfiling, &FlagMetadata{
		Name:         QueryProfiling,
		Description:  "Enable query profiling and analysis",
		DefaultValue: false,
		Category:     "monitoring",
		Stability:    "stable",
	})

	m.register(DebugLogging, &FlagMetadata{
		Name:         DebugLogging,
		Description:  "Enable verbose optimizer trace logging",
		DefaultValue: false,
		Category:     "monitoring",
		Stability:    "stable",
	})

	m.register(ExperimentalJoinSwap, &FlagMetadata{
		Name:         ExperimentalJoinSwap,
		Description:  "Enable cost-based swapping of join inputs",
		DefaultValue: true,
		Category:     "experimental",
		Stability:    "experimental",
	})
}

// register adds a flag to the manager.
func (m *Manager) register(flag Flag, metadata *FlagMetadata) {
	state := &flagState{
		envVar: flagToEnvVar(flag),
	}
	state.enabled.Store(metadata.DefaultValue)

	m.flags[flag] = state
	m.metadata[flag] = metadata
}

// loadFromEnvironment loads flag values from environment variables.
func (m *Manager) loadFromEnvironment() {
	for _, state := range m.flags {
		if val := os.Getenv(state.envVar); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				state.enabled.Store(enabled)
			}
		}
	}
}

// IsEnabled checks if a feature flag is enabled.
func IsEnabled(flag Flag) bool {
	return globalManager.IsEnabled(flag)
}

// IsEnabled checks if a feature flag is enabled.
func (m *Manager) IsEnabled(flag Flag) bool {
	m.mu.RLock()
	state, exists := m.flags[flag]
	m.mu.RUnlock()

	if !exists {
		return false
	}
	return state.enabled.Load()
}

// Enable enables a feature flag.
func Enable(flag Flag) {
	globalManager.Enable(flag)
}

// Enable enables a feature flag.
func (m *Manager) Enable(flag Flag) {
	m.setFlag(flag, true)
}

// Disable disables a feature flag.
func Disable(flag Flag) {
	globalManager.Disable(flag)
}

// Disable disables a feature flag.
func (m *Manager) Disable(flag Flag) {
	m.setFlag(flag, false)
}

func (m *Manager) setFlag(flag Flag, enabled bool) {
	m.mu.RLock()
	state, exists := m.flags[flag]
	m.mu.RUnlock()

	if !exists {
		return
	}
	state.enabled.Store(enabled)
}

// GetAll returns all flag states.
func GetAll() map[Flag]bool {
	return globalManager.GetAll()
}

// GetAll returns all flag states.
func (m *Manager) GetAll() map[Flag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[Flag]bool)
	for flag, state := range m.flags {
		result[flag] = state.enabled.Load()
	}
	return result
}

// GetMetadata returns metadata for a flag.
func (m *Manager) GetMetadata(flag Flag) (*FlagMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metadata, exists := m.metadata[flag]
	return metadata, exists
}

// Reset resets all flags to their default values.
func Reset() {
	globalManager.Reset()
}

// Reset resets all flags to their default values.
func (m *Manager) Reset() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for flag, state := range m.flags {
		state.enabled.Store(m.metadata[flag].DefaultValue)
	}
}

// flagToEnvVar converts a flag name to an environment variable name,
// e.g. cost_based_optimization -> CASCADE_FEATURE_COST_BASED_OPTIMIZATION.
func flagToEnvVar(flag Flag) string {
	return "CASCADE_FEATURE_" + strings.ToUpper(string(flag))
}
