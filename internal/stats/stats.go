// Package stats assembles a point-in-time snapshot of the system for
// the status command.
package stats

import (
	"fmt"

	"github.com/wawagot/convlog/internal/store"
)

// Snapshot is one consistent-enough view of counters across the
// store. Each section is read in its own query; no transaction spans
// them.
type Snapshot struct {
	Sessions     map[string]int          `json:"sessions"`
	Interactions int                     `json:"interactions"`
	Categories   []store.CategoryStat    `json:"categories"`
	QueueDepth   map[string]int          `json:"queueDepth"`
	Health       []store.ComponentHealth `json:"health"`
	Backups      []store.BackupRecord    `json:"backups"`
}

// Collect gathers a snapshot from the store.
func Collect(st *store.Store) (*Snapshot, error) {
	sessions, err := st.SessionStatusCounts()
	if err != nil {
		return nil, fmt.Errorf("collect sessions: %w", err)
	}
	interactions, err := st.InteractionCount()
	if err != nil {
		return nil, fmt.Errorf("collect interactions: %w", err)
	}
	categories, err := st.CategoryStats()
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	depth, err := st.QueueDepth()
	if err != nil {
		return nil, fmt.Errorf("collect queue depth: %w", err)
	}
	health, err := st.ListComponentHealth()
	if err != nil {
		return nil, fmt.Errorf("collect health: %w", err)
	}
	backups, err := st.ListBackups(5)
	if err != nil {
		return nil, fmt.Errorf("collect backups: %w", err)
	}
	return &Snapshot{
		Sessions:     sessions,
		Interactions: interactions,
		Categories:   categories,
		QueueDepth:   depth,
		Health:       health,
		Backups:      backups,
	}, nil
}
