/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/storeforge/storeforge/pkg/store"
)

// Tracker is the transient tracking table: one entry per store whose
// terminal state the cluster has not yet reported. Entries are created at
// request acceptance and die at success-reconciliation, explicit deletion,
// or process restart. The raw map never escapes; all access goes through
// atomic operations keyed by identity.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]store.Record
}

func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]store.Record)}
}

// CheckAndInsert atomically inserts the record unless an entry for its name
// already exists. Returns false on an existing key, which rejects the second
// of two concurrent create requests for the same identity.
func (t *Tracker) CheckAndInsert(record store.Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[record.Name]; exists {
		return false
	}
	t.entries[record.Name] = record
	return true
}

// MarkFailed flips an entry to the terminal Failed state with the given
// diagnostic. Returns false if the entry no longer exists (deleted while
// the workflow was in flight).
func (t *Tracker) MarkFailed(name, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, exists := t.entries[name]
	if !exists {
		return false
	}
	entry.Status = store.StatusFailed
	entry.HelmStatus = "failed"
	entry.Error = message
	entry.Updated = time.Now().UTC().Format(time.RFC3339)
	t.entries[name] = entry
	return true
}

// Delete removes the entry for name, if any.
func (t *Tracker) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, name)
}

// Has reports whether an entry exists for name.
func (t *Tracker) Has(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, exists := t.entries[name]
	return exists
}

// Get returns a copy of the entry for name.
func (t *Tracker) Get(name string) (store.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, exists := t.entries[name]
	return entry, exists
}

// Snapshot returns a copy of all entries, ordered by name.
func (t *Tracker) Snapshot() []store.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]store.Record, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
