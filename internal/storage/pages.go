/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
)

// ProgressFunc is told about each imported file. done counts finished files.
type ProgressFunc func(done, total int, file string)

// nextUID derives a page uid from the file stem, appending "_" until unused.
func (p *Project) nextUID(sourceFile string) string {
	base := filepath.Base(sourceFile)
	uid := strings.TrimSuffix(base, filepath.Ext(base))
	used := make(map[string]bool, len(p.Pages))
	for _, pg := range p.Pages {
		used[pg.UID] = true
	}
	for used[uid] {
		uid += "_"
	}
	return uid
}

// thumbSize fits w x h into the configured longest side.
func (p *Project) thumbSize(w, h int) (int, int) {
	longest := p.ThumbSize
	if longest <= 0 {
		longest = DefaultThumbSize
	}
	if w <= 0 || h <= 0 {
		return longest, longest
	}
	r := float64(longest) / float64(max(w, h))
	tw, th := int(float64(w)*r), int(float64(h)*r)
	return max(tw, 1), max(th, 1)
}

// AddPage opens sourceFile in the host, saves it as a native artifact under
// pages/, writes a JPEG thumbnail under thumbs/ and appends the page.
// The project file itself is not written.
func (p *Project) AddPage(ctx context.Context, app host.App, sourceFile string) (domain.Page, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "add_page").With(slog.String("file", sourceFile))
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	uid := p.nextUID(sourceFile)
	artifact := filepath.Join(p.Root, PagesDirName, uid+app.NativeExt())
	thumb := p.ThumbPath(uid)

	doc, err := app.OpenDocument(sourceFile)
	if err != nil {
		return domain.Page{}, fmt.Errorf("open %s: %w", filepath.Base(sourceFile), err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			l.Warn("close document failed", slog.Any("err", cerr))
		}
	}()
	if err := doc.SaveAs(artifact); err != nil {
		return domain.Page{}, fmt.Errorf("save artifact %s: %w", uid, err)
	}
	tw, th := p.thumbSize(doc.Width(), doc.Height())
	img, err := doc.Thumbnail(tw, th)
	if err != nil {
		return domain.Page{}, fmt.Errorf("thumbnail %s: %w", uid, err)
	}
	if err := gg.SaveJPG(thumb, img, 85); err != nil {
		return domain.Page{}, fmt.Errorf("write thumbnail %s: %w", uid, err)
	}
	pg := domain.Page{UID: uid, SourceFilename: filepath.Base(sourceFile), ArtifactPath: artifact}
	p.Pages = append(p.Pages, pg)
	l.Info("page added", slog.String("uid", uid), slog.Int("w", doc.Width()), slog.Int("h", doc.Height()))
	return pg, nil
}

// ImportPages adds files in order. When ctx is cancelled or a file fails,
// the pages added by this call are rolled back together with their files,
// so the project is left as it was.
func (p *Project) ImportPages(ctx context.Context, app host.App, files []string, progress ProgressFunc) ([]domain.Page, error) {
	if len(files) == 0 {
		return nil, errors.New("no files selected")
	}
	before := len(p.Pages)
	added := make([]domain.Page, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			p.rollback(before)
			return nil, err
		}
		pg, err := p.AddPage(ctx, app, f)
		if err != nil {
			p.rollback(before)
			return nil, err
		}
		added = append(added, pg)
		if progress != nil {
			progress(i+1, len(files), f)
		}
	}
	return added, nil
}

func (p *Project) rollback(n int) {
	for _, pg := range p.Pages[n:] {
		_ = os.Remove(pg.ArtifactPath)
		_ = os.Remove(p.ThumbPath(pg.UID))
	}
	p.Pages = p.Pages[:n]
}

// Reorder replaces the page list with pages, which must hold exactly the
// current pages in any order.
func (p *Project) Reorder(pages []domain.Page) error {
	if len(pages) != len(p.Pages) {
		return ErrNotPermutation
	}
	have := make(map[domain.Page]int, len(p.Pages))
	for _, pg := range p.Pages {
		have[pg]++
	}
	for _, pg := range pages {
		if have[pg] == 0 {
			return ErrNotPermutation
		}
		have[pg]--
	}
	p.Pages = append([]domain.Page(nil), pages...)
	return nil
}

// MovePage moves the page at from so that it ends up at index to.
func (p *Project) MovePage(from, to int) error {
	n := len(p.Pages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move page %d to %d: index out of range [0,%d)", from, to, n)
	}
	next := append([]domain.Page(nil), p.Pages...)
	pg := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]domain.Page{pg}, next[to:]...)...)
	return p.Reorder(next)
}

// OpenPage opens the artifact of the page with uid.
func (p *Project) OpenPage(app host.App, uid string) (host.Document, error) {
	for _, pg := range p.Pages {
		if pg.UID == uid {
			doc, err := app.OpenDocument(pg.ArtifactPath)
			if err != nil {
				return nil, fmt.Errorf("open page %s: %w", uid, err)
			}
			return doc, nil
		}
	}
	return nil, fmt.Errorf("open page %s: %w", uid, os.ErrNotExist)
}
