// Package memory provides an in-memory worktime.Store (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	entries  []worktime.TimeEntry
	index    map[string]int // id -> position in entries
	history  worktime.History
	settings worktime.Settings
}

func New() *Store {
	return &Store{
		index:    make(map[string]int),
		settings: worktime.DefaultSettings(),
	}
}

func (m *Store) ListEntries(_ context.Context) ([]worktime.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]worktime.TimeEntry, len(m.entries))
	copy(result, m.entries)
	return result, nil
}

func (m *Store) ListEntriesInRange(_ context.Context, from, to generic.Date) ([]worktime.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []worktime.TimeEntry{}
	for _, e := range m.entries {
		if from.BeforeOrEqual(e.Date) && e.Date.BeforeOrEqual(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Store) GetEntry(_ context.Context, id string) (worktime.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return worktime.TimeEntry{}, generic.ErrEntryNotFound
	}
	return m.entries[i], nil
}

// SaveEntries upserts by ID. Existing entries keep their position.
func (m *Store) SaveEntries(_ context.Context, entries []worktime.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate all first so the write is all-or-nothing
	for _, e := range entries {
		if e.ID == "" {
			return &generic.EntryValidationError{Field: "id", Message: "must not be empty"}
		}
	}

	for _, e := range entries {
		if i, ok := m.index[e.ID]; ok {
			m.entries[i] = e
			continue
		}
		m.index[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *Store) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return generic.ErrEntryNotFound
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	m.reindexLocked()
	return nil
}

func (m *Store) reindexLocked() {
	m.index = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.index[e.ID] = i
	}
}

func (m *Store) LoadHistory(_ context.Context) (worktime.History, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(worktime.History, len(m.history))
	copy(result, m.history)
	return result, nil
}

func (m *Store) SaveHistory(_ context.Context, h worktime.History) error {
	if err := worktime.ValidateHistory(h); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(worktime.History(nil), h...)
	return nil
}

func (m *Store) LoadSettings(_ context.Context) (worktime.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Store) SaveSettings(_ context.Context, s worktime.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// Replace swaps the whole dataset. Nothing is written when validation fails.
func (m *Store) Replace(_ context.Context, d worktime.Dataset) error {
	if err := worktime.ValidateHistory(d.History); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Entries))
	for _, e := range d.Entries {
		if e.ID == "" || seen[e.ID] {
			return &generic.EntryValidationError{Field: "id", Message: "must be unique and non-empty"}
		}
		seen[e.ID] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]worktime.TimeEntry(nil), d.Entries...)
	m.history = append(worktime.History(nil), d.History...)
	m.settings = d.Settings
	m.reindexLocked()
	return nil
}
