//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"fantranslator/internal/config"
	"fantranslator/internal/crash"
	"fantranslator/internal/domain"
	"fantranslator/internal/export"
	applog "fantranslator/internal/log"
	"fantranslator/internal/session"
	"fantranslator/internal/translate"
	"fantranslator/internal/version"
)

// Run starts the Fyne desktop shell: page list on the left, the rendered
// page in the middle, the translation pairs on the right.
func Run(cfg config.AppConfig, projectDir string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))
	defer crash.Recover(projectDir)

	fyneApp := app.NewWithID("fantranslator")
	w := fyneApp.NewWindow("Fan Translator")
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1280), 900)),
		float32(max(prefs.IntWithFallback("window.height", 820), 600)),
	))

	s := session.New(cfg, nil)
	s.Do = fyne.DoAndWait
	ed := newEditor(s, w, cfg)
	s.OnTick = ed.onTick
	w.SetContent(ed.build())
	w.SetMainMenu(ed.menu())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start()
	go func() { _ = s.Loop.Run(ctx) }()

	if projectDir != "" {
		ed.openProject(projectDir)
	}
	w.SetOnClosed(func() {
		cancel()
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := s.Close(context.Background()); err != nil {
			l.Error("close session failed", slog.Any("err", err))
		}
	})
	w.ShowAndRun()
	return nil
}

// editor owns the widgets. All methods run on the fyne thread.
type editor struct {
	s   *session.Session
	w   fyne.Window
	cfg config.AppConfig
	log *slog.Logger

	status  *widget.Label
	pages   *widget.List
	preview *canvas.Image

	pairs     []domain.TranslationPair
	pairList  *widget.List
	selected  string
	srcEntry  *widget.Entry
	tranEntry *widget.Entry
	fontSel   *widget.Select
	sizeEntry *widget.Entry
	loading   bool

	hits     []domain.PairHit
	hitList  *widget.List
	lastDraw translate.Stats
}

func newEditor(s *session.Session, w fyne.Window, cfg config.AppConfig) *editor {
	return &editor{s: s, w: w, cfg: cfg, log: applog.WithComponent("ui")}
}

func (e *editor) build() fyne.CanvasObject {
	e.status = widget.NewLabel("Open or create a project.")

	e.pages = widget.NewList(
		func() int {
			if p := e.s.Project(); p != nil {
				return len(p.Pages)
			}
			return 0
		},
		func() fyne.CanvasObject {
			img := canvas.NewImageFromResource(nil)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(64, 64))
			return container.NewHBox(img, widget.NewLabel(""))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			p := e.s.Project()
			if p == nil || id >= len(p.Pages) {
				return
			}
			row := o.(*fyne.Container)
			img := row.Objects[0].(*canvas.Image)
			img.File = p.ThumbPath(p.Pages[id].UID)
			img.Refresh()
			row.Objects[1].(*widget.Label).SetText(pageLabel(id, p.Pages[id]))
		},
	)
	e.pages.OnSelected = func(id widget.ListItemID) { e.showPage(id) }

	up := widget.NewButton("Move Up", func() { e.movePage(-1) })
	down := widget.NewButton("Move Down", func() { e.movePage(1) })
	addPages := widget.NewButton("Add Page…", e.addPage)
	left := container.NewBorder(widget.NewLabel("Pages"), container.NewHBox(addPages, up, down), nil, nil, e.pages)

	e.preview = canvas.NewImageFromResource(nil)
	e.preview.FillMode = canvas.ImageFillContain

	right := e.buildPairsPane()
	split := container.NewHSplit(left, container.NewHSplit(e.preview, right))
	split.Offset = 0.2
	split.Trailing.(*container.Split).Offset = 0.62
	return container.NewBorder(nil, e.status, nil, nil, split)
}

func (e *editor) buildPairsPane() fyne.CanvasObject {
	e.pairList = widget.NewList(
		func() int { return len(e.pairs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(e.pairs) {
				o.(*widget.Label).SetText(pairLabel(id, e.pairs[id]))
			}
		},
	)
	e.pairList.OnSelected = func(id widget.ListItemID) {
		if id >= len(e.pairs) {
			return
		}
		e.selectPair(e.pairs[id])
	}

	e.srcEntry = widget.NewMultiLineEntry()
	e.srcEntry.Wrapping = fyne.TextWrapWord
	e.srcEntry.SetPlaceHolder("Source text")
	e.srcEntry.OnChanged = func(text string) {
		if !e.loading && e.selected != "" {
			e.report(e.s.Sync.SetSource(e.selected, text))
		}
	}
	e.tranEntry = widget.NewMultiLineEntry()
	e.tranEntry.Wrapping = fyne.TextWrapWord
	e.tranEntry.SetPlaceHolder("Translation")
	e.tranEntry.OnChanged = func(text string) {
		if !e.loading && e.selected != "" {
			e.report(e.s.Sync.SetTranslation(e.selected, text))
		}
	}

	fonts := append([]string{e.cfg.Layout.DefaultFont}, e.s.Fonts.Families()...)
	e.fontSel = widget.NewSelect(fonts, func(font string) {
		if !e.loading && e.selected != "" {
			e.report(e.s.Sync.SetStyle(e.selected, font, 0))
		}
	})
	e.sizeEntry = widget.NewEntry()
	e.sizeEntry.SetPlaceHolder(strconv.Itoa(e.cfg.Layout.DefaultSize))
	e.sizeEntry.OnChanged = func(v string) {
		if e.loading || e.selected == "" {
			return
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			e.report(e.s.Sync.SetStyle(e.selected, "", n))
		}
	}

	addText := widget.NewButton("Add Text", func() {
		ctx := context.Background()
		p, err := e.s.Sync.AddText(ctx, e.fontSel.Selected, e.sizeValue())
		if e.report(err) {
			e.refreshPairs()
			e.selectPair(p)
		}
	})
	addMask := widget.NewButton("Add Mask", func() {
		if _, err := e.s.Sync.AddMask(context.Background()); e.report(err) {
			e.status.SetText("Mask layer added. Select an area in it, then Add Text.")
		}
	})

	search := widget.NewEntry()
	search.SetPlaceHolder("Search translations…")
	e.hitList = widget.NewList(
		func() int { return len(e.hits) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(e.hits) {
				o.(*widget.Label).SetText(hitLabel(e.hits[id]))
			}
		},
	)
	e.hitList.OnSelected = func(id widget.ListItemID) { e.openHit(id) }
	search.OnSubmitted = func(q string) {
		hits, err := e.s.Search(context.Background(), q, 100)
		if !e.report(err) {
			return
		}
		e.hits = hits
		e.hitList.Refresh()
		e.status.SetText(fmt.Sprintf("%d results", len(hits)))
	}

	form := widget.NewForm(
		widget.NewFormItem("Source", e.srcEntry),
		widget.NewFormItem("Translation", e.tranEntry),
		widget.NewFormItem("Font", e.fontSel),
		widget.NewFormItem("Size", e.sizeEntry),
	)
	top := container.NewBorder(widget.NewLabel("Text regions"), container.NewHBox(addText, addMask), nil, nil, e.pairList)
	bottom := container.NewBorder(search, nil, nil, nil, e.hitList)
	return container.NewVSplit(top, container.NewVSplit(form, bottom))
}

func (e *editor) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project…", e.newProject),
		fyne.NewMenuItem("Open Project…", func() {
			dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
				if err != nil || uri == nil {
					return
				}
				e.openProject(uri.Path())
			}, e.w)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Page", func() {
			if e.report(e.s.SavePage(context.Background())) {
				e.status.SetText("Page saved.")
			}
		}),
		fyne.NewMenuItem("Rebuild Search Index", func() {
			n, err := e.s.Reindex(context.Background())
			if e.report(err) {
				e.status.SetText(fmt.Sprintf("Indexed %d text regions.", n))
			}
		}),
	)
	exp := fyne.NewMenu("Export",
		fyne.NewMenuItem("Translation Script (PDF)…", func() { e.exportTo(".pdf", e.writeScript) }),
		fyne.NewMenuItem("Pages (CBZ)…", func() { e.exportTo(".cbz", e.writeCBZ) }),
	)
	return fyne.NewMainMenu(file, exp)
}

// report shows err in a dialog and returns true when there was none.
func (e *editor) report(err error) bool {
	if err == nil {
		return true
	}
	e.log.Error("operation failed", slog.Any("err", err))
	dialog.ShowError(err, e.w)
	return false
}

func (e *editor) sizeValue() int {
	n, err := strconv.Atoi(strings.TrimSpace(e.sizeEntry.Text))
	if err != nil {
		return 0
	}
	return n
}

func (e *editor) openProject(dir string) {
	p, err := e.s.OpenProject(dir)
	if !e.report(err) {
		return
	}
	e.w.SetTitle("Fan Translator: " + nonEmptyTitle(p.Title, filepath.Base(p.Root)))
	e.pages.Refresh()
	e.status.SetText(fmt.Sprintf("%d pages", len(p.Pages)))
	if len(p.Pages) > 0 {
		e.pages.Select(0)
	}
}

func nonEmptyTitle(t, def string) string {
	if strings.TrimSpace(t) == "" {
		return def
	}
	return t
}

// newProject asks for a folder, a title and a first page image.
func (e *editor) newProject() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		dir := uri.Path()
		title := widget.NewEntry()
		title.SetPlaceHolder("Title")
		dialog.ShowForm("New Project", "Create", "Cancel", []*widget.FormItem{widget.NewFormItem("Title", title)}, func(ok bool) {
			if !ok {
				return
			}
			p, err := e.s.Create(context.Background(), dir, strings.TrimSpace(title.Text), nil, nil)
			if !e.report(err) {
				return
			}
			e.openProject(p.Root)
			e.addPage()
		}, e.w)
	}, e.w)
}

// addPage imports one image. The periodic tasks pause while the import
// runs off the UI thread.
func (e *editor) addPage() {
	if e.s.Project() == nil {
		dialog.ShowInformation("Add Page", "Open a project first.", e.w)
		return
	}
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		bar := widget.NewProgressBarInfinite()
		wait := dialog.NewCustomWithoutButtons("Importing "+filepath.Base(path), bar, e.w)
		wait.Show()
		e.s.Stop()
		go func() {
			_, ierr := e.s.AddPages(context.Background(), []string{path}, nil)
			fyne.Do(func() {
				wait.Hide()
				e.s.Start()
				if e.report(ierr) {
					e.pages.Refresh()
					e.status.SetText("Page added.")
				}
			})
		}()
	}, e.w)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff"}))
	fd.Show()
}

func (e *editor) movePage(delta int) {
	p := e.s.Project()
	doc := e.s.Page()
	if p == nil || doc == nil {
		return
	}
	from := p.PageIndex(doc.FileName())
	to := from + delta
	if from < 0 || to < 0 || to >= len(p.Pages) {
		return
	}
	if e.report(e.s.MovePage(from, to)) {
		e.pages.Refresh()
		e.pages.Select(to)
	}
}

func (e *editor) showPage(i int) {
	p := e.s.Project()
	if doc := e.s.Page(); p != nil && doc != nil && p.PageIndex(doc.FileName()) == i {
		return
	}
	if _, err := e.s.ShowPage(context.Background(), i); !e.report(err) {
		return
	}
	e.selected = ""
	e.refreshPairs()
	e.redraw()
}

func (e *editor) openHit(id int) {
	if id >= len(e.hits) {
		return
	}
	h := e.hits[id]
	p := e.s.Project()
	if p == nil {
		return
	}
	for i, pg := range p.Pages {
		if pg.UID == h.PageUID {
			e.pages.Select(i)
			e.selectPair(h.Pair)
			return
		}
	}
}

func (e *editor) selectPair(p domain.TranslationPair) {
	if err := e.s.Sync.SelectPair(context.Background(), p.UID); err != nil {
		e.log.Debug("select pair", slog.Any("err", err))
	}
	e.selected = p.UID
	e.loading = true
	e.srcEntry.SetText(p.Source)
	e.tranEntry.SetText(p.Translated)
	e.fontSel.SetSelected(p.Font)
	e.sizeEntry.SetText(strconv.Itoa(p.Size))
	e.loading = false
}

func (e *editor) refreshPairs() {
	e.pairs = e.s.Sync.Pairs()
	e.pairList.Refresh()
}

func (e *editor) redraw() {
	doc := e.s.Page()
	if doc == nil {
		e.preview.Image = nil
		e.preview.Refresh()
		return
	}
	img, err := doc.Thumbnail(doc.Width(), doc.Height())
	if err != nil {
		e.log.Debug("render failed", slog.Any("err", err))
		return
	}
	e.preview.Image = img
	e.preview.Refresh()
}

// onTick redraws only when the last tick changed something.
func (e *editor) onTick() {
	st := e.s.Sync.Stats()
	if st.Rewrites == e.lastDraw.Rewrites && st.CarrierWrites == e.lastDraw.CarrierWrites && st.Reloads == e.lastDraw.Reloads {
		return
	}
	e.lastDraw = st
	e.refreshPairs()
	e.redraw()
}

func (e *editor) exportTo(ext string, write func(path string) error) {
	if e.s.Project() == nil {
		dialog.ShowInformation("Export", "Open a project first.", e.w)
		return
	}
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if e.report(write(path)) {
			e.status.SetText("Exported " + filepath.Base(path))
		}
	}, e.w)
	fd.SetFileName(nonEmptyTitle(e.s.Project().Title, "project") + ext)
	fd.Show()
}

func (e *editor) writeScript(path string) error {
	ctx := context.Background()
	if err := e.s.SavePage(ctx); err != nil && !errors.Is(err, domain.ErrNoActiveDocument) {
		return err
	}
	p := e.s.Project()
	pages, err := export.CollectScript(ctx, p, translate.PageReader(e.s.App))
	if err != nil {
		return err
	}
	return export.WriteScriptPDF(pages, path, export.PDFOptions{Title: p.Title})
}

func (e *editor) writeCBZ(path string) error {
	ctx := context.Background()
	if err := e.s.SavePage(ctx); err != nil && !errors.Is(err, domain.ErrNoActiveDocument) {
		return err
	}
	return export.WritePagesCBZ(ctx, e.s.App, e.s.Project(), path, export.CBZOptions{RightToLeft: true})
}
