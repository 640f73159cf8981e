package planner

import (
	"github.com/cascadedb/cascade/internal/config"
	"github.com/cascadedb/cascade/internal/feature"
	"github.com/cascadedb/cascade/internal/log"
)

// Session carries the per-query settings the optimizer consults: the query
// id for logging, the optimizer configuration, feature flags, and the
// warning collector for non-fatal planning conditions.
type Session struct {
	QueryID  string
	Config   *config.OptimizerConfig
	Features *feature.Manager
	Warnings *WarningCollector
	Logger   log.Logger
}

// NewSession creates a session with the given query id and defaults for
// everything else.
func NewSession(queryID string) *Session {
	return &Session{
		QueryID:  queryID,
		Config:   config.DefaultOptimizerConfig(),
		Features: feature.NewManager(),
		Warnings: NewWarningCollector(),
		Logger:   log.Discard(),
	}
}

// IsFeatureEnabled reports whether a feature flag is on for this session.
func (s *Session) IsFeatureEnabled(flag feature.Flag) bool {
	return s.Features.IsEnabled(flag)
}

// Warn records a warning for the query.
func (s *Session) Warn(code, message string) {
	s.Warnings.Add(code, message)
}
