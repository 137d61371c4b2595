/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"

	"fantranslator/internal/domain"
	"fantranslator/internal/host/memhost"
	"fantranslator/internal/storage"
	"fantranslator/internal/translate"
)

// translatedProject imports two pages and stores pairs on the first one.
func translatedProject(t *testing.T) (*storage.Project, *memhost.App) {
	t.Helper()
	src := t.TempDir()
	var files []string
	for _, name := range []string{"001.png", "002.png"} {
		dc := gg.NewContext(60, 80)
		dc.SetRGB(1, 1, 1)
		dc.Clear()
		path := filepath.Join(src, name)
		if err := gg.SavePNG(path, dc.Image()); err != nil {
			t.Fatalf("write image: %v", err)
		}
		files = append(files, path)
	}
	p, err := storage.NewProject(filepath.Join(t.TempDir(), "proj"))
	if err != nil {
		t.Fatalf("NewProject error: %v", err)
	}
	p.Title = "Test Chapter"
	app := memhost.NewApp()
	if _, err := p.ImportPages(context.Background(), app, files, nil); err != nil {
		t.Fatalf("ImportPages error: %v", err)
	}
	doc, err := app.Open(p.Pages[0].ArtifactPath)
	if err != nil {
		t.Fatalf("open page: %v", err)
	}
	payload, err := translate.EncodePairs([]domain.TranslationPair{
		{UID: "u1", Source: "source one", Translated: "Hello there", Font: "Arial", Size: 24},
		{UID: "u2", Source: "", Translated: "", Font: "Arial", Size: 18},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := translate.WriteCarrier(doc, payload); err != nil {
		t.Fatalf("write carrier: %v", err)
	}
	if err := doc.Save(); err != nil {
		t.Fatalf("save page: %v", err)
	}
	_ = doc.Close()
	return p, app
}

func TestCollectScriptReadsPagesInOrder(t *testing.T) {
	p, app := translatedProject(t)
	pages, err := CollectScript(context.Background(), p, translate.PageReader(app))
	if err != nil {
		t.Fatalf("CollectScript error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Number != 1 || len(pages[0].Pairs) != 2 || pages[0].Pairs[0].Translated != "Hello there" {
		t.Fatalf("first page = %+v", pages[0])
	}
	if pages[1].Number != 2 || len(pages[1].Pairs) != 0 {
		t.Fatalf("untranslated page should have no pairs: %+v", pages[1])
	}
}

func TestCollectScriptFailsOnUnreadablePage(t *testing.T) {
	p, app := translatedProject(t)
	if err := os.Remove(p.Pages[1].ArtifactPath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := CollectScript(context.Background(), p, translate.PageReader(app)); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}

func TestWriteScriptPDF_CreatesFile(t *testing.T) {
	p, app := translatedProject(t)
	pages, err := CollectScript(context.Background(), p, translate.PageReader(app))
	if err != nil {
		t.Fatalf("CollectScript error: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out", "script.pdf")
	if err := WriteScriptPDF(pages, out, PDFOptions{Title: p.Title}); err != nil {
		t.Fatalf("WriteScriptPDF error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) || len(b) < 1000 {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(b))
	}
}

func TestWriteScriptPDF_MissingFont(t *testing.T) {
	err := WriteScriptPDF(nil, filepath.Join(t.TempDir(), "s.pdf"), PDFOptions{FontFile: filepath.Join(t.TempDir(), "none.ttf")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWritePagesCBZ(t *testing.T) {
	p, app := translatedProject(t)
	out := filepath.Join(t.TempDir(), "chapter")
	if err := WritePagesCBZ(context.Background(), app, p, out, CBZOptions{Series: "Series", RightToLeft: true}); err != nil {
		t.Fatalf("WritePagesCBZ error: %v", err)
	}
	zr, err := zip.OpenReader(out + ".cbz")
	if err != nil {
		t.Fatalf("open cbz: %v", err)
	}
	defer zr.Close()
	var names []string
	var info string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "ComicInfo.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open manifest: %v", err)
			}
			b, _ := io.ReadAll(rc)
			_ = rc.Close()
			info = string(b)
		}
	}
	if strings.Join(names, ",") != "1.png,2.png,ComicInfo.xml" {
		t.Fatalf("entries = %v", names)
	}
	for _, want := range []string{"<Title>Test Chapter</Title>", "<PageCount>2</PageCount>", "YesAndRightToLeft"} {
		if !strings.Contains(info, want) {
			t.Fatalf("manifest missing %q:\n%s", want, info)
		}
	}
	if len(app.Documents()) != 0 {
		t.Fatalf("export must close the pages it opened")
	}
}
