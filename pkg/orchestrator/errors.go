/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package orchestrator

// ValidationError reports user-fixable input problems (bad name, unsupported
// engine, missing fields). No cluster mutation has been attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports that a store identity already exists, either in the
// authoritative cluster state or in the transient table.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
