/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package retry

import (
	"context"
	"time"
)

// Func is an operation that can be retried. attempt is 1-based.
type Func func(ctx context.Context, attempt int) error

// Do invokes fn up to attempts times with a fixed delay between attempts.
// The first invocation happens immediately; subsequent invocations wait
// delay first. Returns nil on the first success, the last error once the
// bound is exhausted, or the context error if ctx is done during a delay.
func Do(ctx context.Context, attempts int, delay time.Duration, fn Func) error {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := fn(ctx, attempt); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	return lastErr
}

// Sleep waits for d or until ctx is done, whichever comes first.
// Used for fixed grace delays between pipeline stages.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
