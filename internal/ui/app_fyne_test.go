//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests exercise the editor widgets with the fyne test driver. They
// are gated behind the "fyne" build tag so headless CI does not need Fyne.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"context"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/fogleman/gg"
	"github.com/jonboulle/clockwork"

	"fantranslator/internal/config"
	"fantranslator/internal/session"
)

func TestEditorShowsPairsOfSelectedPage(t *testing.T) {
	test.NewApp()
	cfg := config.Defaults()
	s := session.New(cfg, clockwork.NewFakeClock())
	defer func() { _ = s.Close(context.Background()) }()

	dc := gg.NewContext(200, 300)
	dc.Clear()
	img := filepath.Join(t.TempDir(), "p1.png")
	if err := gg.SavePNG(img, dc.Image()); err != nil {
		t.Fatalf("write image: %v", err)
	}
	p, err := s.Create(context.Background(), filepath.Join(t.TempDir(), "proj"), "T", []string{img}, nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	w := test.NewWindow(nil)
	defer w.Close()
	ed := newEditor(s, w, cfg)
	w.SetContent(ed.build())

	ed.openProject(p.Root)
	if s.Page() == nil {
		t.Fatalf("opening a project should show its first page")
	}
	if ed.preview.Image == nil {
		t.Fatalf("preview not rendered")
	}

	pair, err := s.Sync.AddText(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("AddText error: %v", err)
	}
	ed.refreshPairs()
	ed.selectPair(pair)
	test.Type(ed.tranEntry, "Hi")
	if got := s.Sync.Pairs()[0].Translated; got != "Hi" {
		t.Fatalf("translation = %q, want Hi", got)
	}
	if got := pairLabel(0, s.Sync.Pairs()[0]); got != "1. Hi" {
		t.Fatalf("label = %q", got)
	}
}
