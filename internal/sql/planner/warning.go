package planner

import "sync"

// Warning is a non-fatal condition raised during planning, reported to the
// client alongside the result.
type Warning struct {
	Code    string
	Message string
}

// WarningCollector accumulates warnings for one query. Safe for concurrent
// use; estimate providers may be consulted from multiple goroutines.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewWarningCollector creates an empty collector.
func NewWarningCollector() *WarningCollector {
	return &WarningCollector{}
}

// Add records a warning.
func (w *WarningCollector) Add(code, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, Warning{Code: code, Message: message})
}

// Warnings returns a copy of the recorded warnings in order.
func (w *WarningCollector) Warnings() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Warning, len(w.warnings))
	copy(out, w.warnings)
	return out
}
