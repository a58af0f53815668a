/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

import "github.com/storeforge/storeforge/pkg/store"

// Reconcile merges the authoritative release list with the transient table
// into a single view. Pure function: transient entries absent from the
// authoritative list are appended to the result; entries the authoritative
// list already covers are returned in resolved so the caller can drop them
// (presence in the authoritative list always wins). This is how an install
// that succeeded before the workflow's terminal update, or before a process
// restart, becomes visible without duplicates or stale copies.
func Reconcile(authoritative, transient []store.Record) (merged []store.Record, resolved []string) {
	known := make(map[string]struct{}, len(authoritative))
	for _, r := range authoritative {
		known[r.Name] = struct{}{}
	}

	merged = make([]store.Record, 0, len(authoritative)+len(transient))
	merged = append(merged, authoritative...)

	for _, entry := range transient {
		if _, exists := known[entry.Name]; exists {
			resolved = append(resolved, entry.Name)
			continue
		}
		merged = append(merged, entry)
	}
	return merged, resolved
}
