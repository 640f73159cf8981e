package catalog

import (
	"time"
)

// TableStats holds table-level statistics.
type TableStats struct {
	RowCount     float64
	AvgRowSize   float64
	LastAnalyzed time.Time
}

// ColumnStats holds column-level statistics for the planner. Fields are
// floats where NaN encodes "unknown" and distinct counts may be fractional.
type ColumnStats struct {
	DistinctCount float64
	NullsFraction float64
	LowValue      float64
	HighValue     float64
	AvgWidth      float64
	LastAnalyzed  time.Time
}

// StatsSource supplies base-table statistics to the planner. Implementations
// live with connector/catalog metadata; the planner treats them as opaque.
type StatsSource interface {
	// TableStatistics returns statistics for a table, or nil when the table
	// has not been analyzed. Missing statistics are not an error.
	TableStatistics(table string) (*TableStats, error)

	// ColumnStatistics returns statistics for a column, or nil when unknown.
	ColumnStatistics(table, column string) (*ColumnStats, error)
}

// StatsWriter updates statistics, typically from an ANALYZE-style pass.
type StatsWriter interface {
	SetTableStats(table string, stats *TableStats) error
	SetColumnStats(table, column string, stats *ColumnStats) error
}
