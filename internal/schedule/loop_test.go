/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPendingRunsOnlyDueTasks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loop := New(clock)
	var sync, watch int
	loop.Every(time.Second, func(context.Context) { sync++ })
	loop.Every(500*time.Millisecond, func(context.Context) { watch++ })
	ctx := context.Background()

	assert.Equal(t, 0, loop.RunPending(ctx), "nothing is due at registration time")

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, loop.RunPending(ctx))
	assert.Equal(t, 0, sync)
	assert.Equal(t, 1, watch)

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, loop.RunPending(ctx))
	assert.Equal(t, 1, sync)
	assert.Equal(t, 2, watch)

	// missed periods collapse into a single run
	clock.Advance(5 * time.Second)
	loop.RunPending(ctx)
	assert.Equal(t, 2, sync)
	assert.Equal(t, 3, watch)
}

func TestCancelledTaskNeverRuns(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loop := New(clock)
	task := loop.Every(time.Second, func(context.Context) { t.Fatal("cancelled task ran") })
	task.Cancel()
	task.Cancel()
	clock.Advance(3 * time.Second)
	assert.Equal(t, 0, loop.RunPending(context.Background()))
	assert.Equal(t, 0, task.Runs())
}

func TestPanickingTaskDoesNotStopOthers(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loop := New(clock)
	loop.Every(time.Second, func(context.Context) { panic("boom") })
	ok := loop.Every(time.Second, func(context.Context) {})
	clock.Advance(time.Second)
	assert.Equal(t, 2, loop.RunPending(context.Background()))
	assert.Equal(t, 1, ok.Runs())
}

func TestRunFiresOnClockAndStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loop := New(clock)
	fired := make(chan struct{}, 4)
	loop.Every(time.Second, func(context.Context) { fired <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	clock.Advance(time.Second)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
