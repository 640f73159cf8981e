package catalog

import (
	"sync"

	"github.com/google/btree"
)

// statsItem is a btree entry. An empty column name marks table-level stats,
// which sorts before all column entries of the same table.
type statsItem struct {
	table  string
	column string

	tableStats  *TableStats
	columnStats *ColumnStats
}

func (i *statsItem) Less(than btree.Item) bool {
	other := than.(*statsItem)
	if i.table != other.table {
		return i.table < other.table
	}
	return i.column < other.column
}

// MemoryStatsCatalog is an in-memory StatsSource backed by an ordered index
// keyed by (table, column). Safe for concurrent readers; a single writer
// (the analyze pass) updates it between queries.
type MemoryStatsCatalog struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// NewMemoryStatsCatalog creates an empty statistics catalog.
func NewMemoryStatsCatalog() *MemoryStatsCatalog {
	return &MemoryStatsCatalog{
		tree: btree.New(16),
	}
}

// SetTableStats records table-level statistics.
func (c *MemoryStatsCatalog) SetTableStats(table string, stats *TableStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.ReplaceOrInsert(&statsItem{table: table, tableStats: stats})
	return nil
}

// SetColumnStats records column-level statistics.
func (c *MemoryStatsCatalog) SetColumnStats(table, column string, stats *ColumnStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.ReplaceOrInsert(&statsItem{table: table, column: column, columnStats: stats})
	return nil
}

// TableStatistics implements StatsSource.
func (c *MemoryStatsCatalog) TableStatistics(table string) (*TableStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item := c.tree.Get(&statsItem{table: table})
	if item == nil {
		return nil, nil
	}
	return item.(*statsItem).tableStats, nil
}

// ColumnStatistics implements StatsSource.
func (c *MemoryStatsCatalog) ColumnStatistics(table, column string) (*ColumnStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item := c.tree.Get(&statsItem{table: table, column: column})
	if item == nil {
		return nil, nil
	}
	return item.(*statsItem).columnStats, nil
}

// AscendTable visits every column's statistics for one table in column-name
// order. Visiting stops when fn returns false.
func (c *MemoryStatsCatalog) AscendTable(table string, fn func(column string, stats *ColumnStats) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.tree.AscendGreaterOrEqual(&statsItem{table: table}, func(item btree.Item) bool {
		entry := item.(*statsItem)
		if entry.table != table {
			return false
		}
		if entry.column == "" {
			return true // table-level entry
		}
		return fn(entry.column, entry.columnStats)
	})
}

// Len returns the number of entries, for tests and diagnostics.
func (c *MemoryStatsCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Len()
}
