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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsRetryableMatchesKnownSubstrings(t *testing.T) {
	require.True(t, isRetryable(errors.New("dial tcp: connection refused")))
	require.True(t, isRetryable(errors.New("context deadline exceeded")))
	require.True(t, isRetryable(errors.New("server returned 503")))
	require.False(t, isRetryable(errors.New("invalid api key")))
	require.False(t, isRetryable(nil))
}

func TestWithBackoffSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := withBackoff(context.Background(), 5, 50*time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithBackoffStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := withBackoff(context.Background(), 5, 50*time.Millisecond, func() error {
		attempts++
		return errors.New("malformed request")
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestWithBackoffExhaustsMaxAttempts(t *testing.T) {
	attempts := 0
	err := withBackoff(context.Background(), 3, 20*time.Millisecond, func() error {
		attempts++
		return errors.New("timeout")
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withBackoff(ctx, 5, time.Second, func() error {
		attempts++
		return errors.New("timeout")
	})
	require.Error(t, err)
}
