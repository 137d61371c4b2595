/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schedule runs periodic tasks on a single goroutine so that tasks
// touching the host document never overlap.
package schedule

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	applog "fantranslator/internal/log"
)

// Func is the body of a periodic task.
type Func func(ctx context.Context)

// Loop owns a set of periodic tasks.
type Loop struct {
	clock clockwork.Clock
	log   *slog.Logger

	mu    sync.Mutex
	tasks []*Task
	wake  chan struct{}
}

// Task is a handle on one registered periodic task.
type Task struct {
	loop      *Loop
	period    time.Duration
	fn        Func
	next      time.Time
	cancelled bool
	runs      int
}

// New creates a loop driven by clock; nil uses the wall clock.
func New(clock clockwork.Clock) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		clock: clock,
		log:   applog.WithComponent("schedule"),
		wake:  make(chan struct{}, 1),
	}
}

// Clock returns the loop's clock.
func (l *Loop) Clock() clockwork.Clock { return l.clock }

// Every registers fn to run each period, first one period from now.
func (l *Loop) Every(period time.Duration, fn Func) *Task {
	if period <= 0 {
		period = time.Second
	}
	t := &Task{loop: l, period: period, fn: fn, next: l.clock.Now().Add(period)}
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
	l.poke()
	return t
}

// Cancel stops the task. A cancelled task never runs again; cancelling twice is a no-op.
func (t *Task) Cancel() {
	l := t.loop
	l.mu.Lock()
	t.cancelled = true
	for i, x := range l.tasks {
		if x == t {
			l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	l.poke()
}

// Runs reports how many times the task has executed.
func (t *Task) Runs() int {
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	return t.runs
}

func (l *Loop) poke() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every task that is due, in registration order, and returns
// how many ran. A task that missed several periods runs once.
func (l *Loop) RunPending(ctx context.Context) int {
	now := l.clock.Now()
	l.mu.Lock()
	var due []*Task
	for _, t := range l.tasks {
		if !t.next.After(now) {
			due = append(due, t)
			t.next = now.Add(t.period)
		}
	}
	l.mu.Unlock()

	ran := 0
	for _, t := range due {
		l.mu.Lock()
		skip := t.cancelled
		l.mu.Unlock()
		if skip || ctx.Err() != nil {
			continue
		}
		l.invoke(ctx, t)
		ran++
	}
	return ran
}

func (l *Loop) invoke(ctx context.Context, t *Task) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("task panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	l.mu.Lock()
	t.runs++
	l.mu.Unlock()
	t.fn(ctx)
}

// nextDue returns the earliest due time, ok false when no task is registered.
func (l *Loop) nextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var next time.Time
	for i, t := range l.tasks {
		if i == 0 || t.next.Before(next) {
			next = t.next
		}
	}
	return next, len(l.tasks) > 0
}

// Run executes tasks as they fall due until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Debug("loop started")
	defer l.log.Debug("loop stopped")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, ok := l.nextDue()
		if ok && !next.After(l.clock.Now()) {
			l.RunPending(ctx)
			continue
		}
		var timerC <-chan time.Time
		var timer clockwork.Timer
		if ok {
			timer = l.clock.NewTimer(next.Sub(l.clock.Now()))
			timerC = timer.Chan()
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
			l.RunPending(ctx)
		}
	}
}
