/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session wires one translation project to the reference host:
// the open page, its synchronizer, the project watcher, the search index
// and the periodic loop that drives them. The desktop UI and the CLI both
// work through a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"

	"fantranslator/internal/config"
	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	"fantranslator/internal/host/memhost"
	applog "fantranslator/internal/log"
	"fantranslator/internal/schedule"
	"fantranslator/internal/storage"
	"fantranslator/internal/textlayout"
	"fantranslator/internal/translate"
	"fantranslator/internal/watch"
)

// ErrNoProject is returned by project operations before a project is open.
var ErrNoProject = errors.New("no project open")

// Session holds the state behind one editor window.
type Session struct {
	App   *memhost.App
	Sync  *translate.Synchronizer
	Watch *watch.Watcher
	Loop  *schedule.Loop
	Fonts *textlayout.FontLibrary

	cfg config.AppConfig
	log *slog.Logger

	// Do runs f on the thread that owns the host. The default calls f directly.
	Do func(f func())
	// OnTick is called after every synchronizer tick, inside Do.
	OnTick func()

	mu      sync.Mutex
	project *storage.Project
	index   *storage.Index
	page    *memhost.Document
	tasks   []*schedule.Task
}

// New creates a session. A nil clock uses wall time.
func New(cfg config.AppConfig, clock clockwork.Clock) *Session {
	app := memhost.NewApp()
	fonts := textlayout.NewFontLibrary()
	if n := fonts.LoadDirs(cfg.Layout.FontDirs...); n > 0 {
		applog.WithComponent("session").Info("fonts loaded", slog.Int("faces", n))
	}
	s := &Session{
		App:   app,
		Watch: watch.New(app),
		Loop:  schedule.New(clock),
		Fonts: fonts,
		cfg:   cfg,
		log:   applog.WithComponent("session"),
		Do:    func(f func()) { f() },
	}
	s.Sync = translate.NewSynchronizer(app, translate.Options{
		Measurer:    textlayout.FaceMeasurer{Provider: &textlayout.OTProvider{Lib: fonts, Fallback: textlayout.BasicProvider{}}},
		LineSpacing: cfg.Layout.LineSpacing,
		DefaultFont: cfg.Layout.DefaultFont,
		DefaultSize: cfg.Layout.DefaultSize,
		OnPersist:   s.reindexPage,
	})
	s.Watch.Subscribe(s.follow)
	return s
}

// follow adopts the project of the active document when it differs from
// the open one. Documents outside any project keep the current project.
func (s *Session) follow(p *storage.Project) {
	if p == nil {
		return
	}
	if cur := s.Project(); cur != nil && cur.Root == p.Root {
		return
	}
	p.ThumbSize = s.cfg.Project.ThumbnailSize
	s.log.Info("following project of active document", slog.String("root", p.Root))
	s.setProject(p)
}

// Project is the open project or nil.
func (s *Session) Project() *storage.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// Page is the open page document or nil.
func (s *Session) Page() *memhost.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Index is the open project's search index, nil when it could not be opened.
func (s *Session) Index() *storage.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Create scaffolds a project in dir, imports files and saves project.json.
// A cancelled or failed import leaves nothing saved.
func (s *Session) Create(ctx context.Context, dir, title string, files []string, progress storage.ProgressFunc) (*storage.Project, error) {
	p, err := storage.NewProject(dir)
	if err != nil {
		return nil, err
	}
	p.Title = title
	p.ThumbSize = s.cfg.Project.ThumbnailSize
	if len(files) > 0 {
		if _, err := p.ImportPages(ctx, s.App, files, progress); err != nil {
			return nil, err
		}
	}
	if err := p.Save(); err != nil {
		return nil, err
	}
	s.setProject(p)
	return p, nil
}

// OpenProject loads <dir>/project.json.
func (s *Session) OpenProject(dir string) (*storage.Project, error) {
	p, err := storage.Load(filepath.Join(dir, storage.ProjectFileName))
	if err != nil {
		return nil, err
	}
	p.ThumbSize = s.cfg.Project.ThumbnailSize
	s.setProject(p)
	return p, nil
}

func (s *Session) setProject(p *storage.Project) {
	ix, err := storage.OpenIndex(p.Root)
	if err != nil {
		s.log.Warn("search index unavailable", slog.Any("err", err))
		ix = nil
	}
	s.mu.Lock()
	old := s.index
	s.project = p
	s.index = ix
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
}

// AddPages imports files into the open project and saves it.
func (s *Session) AddPages(ctx context.Context, files []string, progress storage.ProgressFunc) ([]domain.Page, error) {
	p := s.Project()
	if p == nil {
		return nil, ErrNoProject
	}
	added, err := p.ImportPages(ctx, s.App, files, progress)
	if err != nil {
		return nil, err
	}
	return added, p.Save()
}

// MovePage reorders the open project and saves it.
func (s *Session) MovePage(from, to int) error {
	p := s.Project()
	if p == nil {
		return ErrNoProject
	}
	if err := p.MovePage(from, to); err != nil {
		return err
	}
	return p.Save()
}

// ShowPage saves and closes the current page, then opens page i of the
// project and makes it the active document.
func (s *Session) ShowPage(ctx context.Context, i int) (*memhost.Document, error) {
	p := s.Project()
	if p == nil {
		return nil, ErrNoProject
	}
	if i < 0 || i >= len(p.Pages) {
		return nil, fmt.Errorf("page %d: index out of range [0,%d)", i, len(p.Pages))
	}
	if err := s.ClosePage(ctx); err != nil {
		return nil, err
	}
	return s.OpenFile(ctx, p.Pages[i].ArtifactPath)
}

// OpenFile opens any page artifact, activates it and loads its pairs.
func (s *Session) OpenFile(ctx context.Context, path string) (*memhost.Document, error) {
	doc, err := s.App.Open(path)
	if err != nil {
		return nil, err
	}
	s.App.Activate(doc)
	s.mu.Lock()
	s.page = doc
	s.mu.Unlock()
	if err := s.Sync.Load(ctx); err != nil {
		return nil, err
	}
	s.log.Info("page opened", slog.String("path", path), slog.Int("pairs", len(s.Sync.Pairs())))
	return doc, nil
}

// SavePage runs a final tick and writes the open page to its artifact.
func (s *Session) SavePage(ctx context.Context) error {
	doc := s.Page()
	if doc == nil {
		return domain.ErrNoActiveDocument
	}
	s.Sync.Tick(ctx)
	if err := doc.Save(); err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	return nil
}

// ClosePage saves and closes the open page, if any.
func (s *Session) ClosePage(ctx context.Context) error {
	doc := s.Page()
	if doc == nil {
		return nil
	}
	if err := s.SavePage(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.page = nil
	s.mu.Unlock()
	return doc.Close()
}

// reindexPage keeps the search index current whenever a carrier changes.
func (s *Session) reindexPage(doc host.Document, pairs []domain.TranslationPair) {
	p, ix := s.Project(), s.Index()
	if p == nil || ix == nil {
		return
	}
	i := p.PageIndex(doc.FileName())
	if i < 0 {
		return
	}
	if err := ix.IndexPagePairs(context.Background(), p.Pages[i].UID, pairs); err != nil {
		s.log.Warn("index update failed", slog.String("page", p.Pages[i].UID), slog.Any("err", err))
	}
}

// Reindex rebuilds the search index from every page's carrier.
func (s *Session) Reindex(ctx context.Context) (int, error) {
	p, ix := s.Project(), s.Index()
	if p == nil {
		return 0, ErrNoProject
	}
	if ix == nil {
		return 0, errors.New("search index unavailable")
	}
	return ix.Rebuild(ctx, p, translate.PageReader(s.App))
}

// Search queries the project's pair index.
func (s *Session) Search(ctx context.Context, query string, limit int) ([]domain.PairHit, error) {
	ix := s.Index()
	if ix == nil {
		return nil, ErrNoProject
	}
	return ix.SearchPairs(ctx, query, limit)
}

// Start registers the synchronizer and watcher on the loop. Run the loop
// with Loop.Run or drive it with Loop.RunPending.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) > 0 {
		return
	}
	s.tasks = append(s.tasks,
		s.Loop.Every(s.cfg.Sync.TickInterval(), func(ctx context.Context) {
			s.Do(func() {
				s.Sync.Tick(ctx)
				if s.OnTick != nil {
					s.OnTick()
				}
			})
		}),
		s.Loop.Every(s.cfg.Sync.WatchInterval(), func(ctx context.Context) {
			s.Do(func() { s.Watch.Check(ctx) })
		}),
	)
}

// Stop cancels the periodic tasks.
func (s *Session) Stop() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
}

// Close stops the tasks, saves the open page and closes the index.
func (s *Session) Close(ctx context.Context) error {
	s.Stop()
	err := s.ClosePage(ctx)
	s.mu.Lock()
	ix := s.index
	s.index = nil
	s.mu.Unlock()
	if ix != nil {
		if cerr := ix.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
