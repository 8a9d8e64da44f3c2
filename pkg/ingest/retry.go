// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// retryableSubstrings classifies an error as transient by substring match,
// the same coarse heuristic the teacher's retry helper uses rather than
// requiring every collaborator to export a sentinel error type.
var retryableSubstrings = []string{
	"timeout", "deadline exceeded", "connection reset", "connection refused",
	"temporarily unavailable", "too many requests", "5", // catches "5xx"-flavored messages
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// withBackoff retries fn up to maxAttempts times with jittered exponential
// backoff bounded by maxDelay, stopping early on a non-retryable error or
// context cancellation.
func withBackoff(ctx context.Context, maxAttempts int, maxDelay time.Duration, fn func() error) error {
	var lastErr error
	base := 250 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		delay := base * time.Duration(1<<attempt)
		if delay > maxDelay {
			delay = maxDelay
		}
		delay += time.Duration(rand.Int63n(int64(delay)/4 + 1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
