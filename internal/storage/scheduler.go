package storage

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Maintenance periodically flushes a Table's resident pages and free-page
// header to disk on a cron schedule. There is no dirty bit in this engine —
// every resident page is treated as possibly dirty — so without some
// durability sweep, writes only reach disk when eviction happens to pick
// them or Close runs. Flush itself takes Table's own lock, so a
// Maintenance tick serializes exactly like any other caller; spec.md §5's
// single-in-flight-operation guarantee holds even though the tick fires
// from cron's own goroutine (SPEC_FULL.md §2.5). This is pure durability
// convenience, not a concurrency feature.
type Maintenance struct {
	table   *Table
	cron    *cron.Cron
	logger  *log.Logger
	entryID cron.EntryID
}

// NewMaintenance builds a scheduler for table that flushes on the given
// cron spec (standard 5-field cron, or a "@every 5m" style descriptor).
// logger defaults to log.Default() when nil.
func NewMaintenance(table *Table, spec string, logger *log.Logger) (*Maintenance, error) {
	if logger == nil {
		logger = log.Default()
	}
	m := &Maintenance{table: table, cron: cron.New(), logger: logger}

	id, err := m.cron.AddFunc(spec, m.runOnce)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid maintenance schedule %q: %w", spec, err)
	}
	m.entryID = id
	return m, nil
}

func (m *Maintenance) runOnce() {
	if err := m.table.Flush(); err != nil {
		m.logger.Printf("maintenance: flush failed: %v", err)
	}
}

// Start begins running the schedule in its own goroutine. Safe to call
// even if the schedule never fires before Stop.
func (m *Maintenance) Start() {
	m.cron.Start()
}

// Stop halts the schedule and blocks until any in-flight run finishes.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
}
