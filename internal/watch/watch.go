/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package watch follows the host's active document and keeps track of the
// project it belongs to. A page artifact lives in <root>/pages/, so its
// project file is two folders up.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
	"fantranslator/internal/storage"
)

// Func receives the newly observed project, nil when the active document
// is not part of a readable project.
type Func func(p *storage.Project)

// Watcher polls the active document. Check is meant to be registered on a
// schedule.Loop.
type Watcher struct {
	app  host.App
	log  *slog.Logger
	load func(path string) (*storage.Project, error)

	mu      sync.Mutex
	seen    bool
	last    string
	project *storage.Project
	subs    map[int]Func
	nextID  int
}

// New creates a watcher over app.
func New(app host.App) *Watcher {
	return &Watcher{
		app:  app,
		log:  applog.WithComponent("watch"),
		load: storage.Load,
		subs: make(map[int]Func),
	}
}

// ProjectPath derives the project file of a page artifact.
func ProjectPath(docPath string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(docPath)), storage.ProjectFileName)
}

// Subscribe registers fn and returns a function that removes it.
func (w *Watcher) Subscribe(fn Func) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Project is the last observed project or nil.
func (w *Watcher) Project() *storage.Project {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.project
}

// PageIndex is the position of the active document in the current project,
// or -1 when there is none.
func (w *Watcher) PageIndex() int {
	p := w.Project()
	doc := w.app.ActiveDocument()
	if p == nil || doc == nil {
		return -1
	}
	return p.PageIndex(doc.FileName())
}

// Check looks at the active document once. Subscribers are only told when
// the derived project path differs from the previous one.
func (w *Watcher) Check(ctx context.Context) {
	doc := w.app.ActiveDocument()
	if doc == nil || doc.FileName() == "" {
		return
	}
	path := ProjectPath(doc.FileName())

	w.mu.Lock()
	if w.seen && w.last == path {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	p, err := w.load(path)
	switch {
	case err == nil:
		w.log.Info("project changed", slog.String("path", path), slog.Int("pages", len(p.Pages)))
	case errors.Is(err, fs.ErrNotExist):
		w.log.Debug("document outside a project", slog.String("doc", doc.FileName()))
		p = nil
	default:
		w.log.Warn("project unreadable", slog.String("path", path), slog.Any("err", err))
		p = nil
	}

	w.mu.Lock()
	w.seen = true
	w.last = path
	w.project = p
	subs := make([]Func, 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	for _, fn := range subs {
		if ctx.Err() != nil {
			return
		}
		fn(p)
	}
}
