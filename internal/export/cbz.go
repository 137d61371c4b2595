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
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
	"fantranslator/internal/storage"
)

// CBZOptions controls page archive export.
type CBZOptions struct {
	Series      string
	RightToLeft bool // manga reading order
}

// comicInfo is the reader metadata file at the archive root.
type comicInfo struct {
	XMLName   xml.Name `xml:"ComicInfo"`
	Series    string   `xml:"Series,omitempty"`
	Title     string   `xml:"Title"`
	PageCount int      `xml:"PageCount"`
	Manga     string   `xml:"Manga"`
	Notes     string   `xml:"Notes,omitempty"`
}

// WritePagesCBZ renders every page of p at full size through the host and
// packs the images with a ComicInfo.xml into outPath.
func WritePagesCBZ(ctx context.Context, app host.App, p *storage.Project, outPath string, opt CBZOptions) (err error) {
	l := applog.WithOperation(applog.WithComponent("export"), "cbz").With(slog.String("out", outPath))
	if !strings.EqualFold(filepath.Ext(outPath), ".cbz") {
		outPath += ".cbz"
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create cbz: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()
	zw := zip.NewWriter(f)

	pad := len(fmt.Sprint(len(p.Pages)))
	for i, pg := range p.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := fmt.Sprintf("%0*d.png", pad, i+1)
		if err := addPage(zw, app, p, pg.UID, name); err != nil {
			return err
		}
		l.Debug("page packed", slog.String("page", pg.UID), slog.String("entry", name))
	}

	info := comicInfo{Series: opt.Series, Title: p.Title, PageCount: len(p.Pages), Manga: "Yes", Notes: "Created with fantranslator"}
	if opt.RightToLeft {
		info.Manga = "YesAndRightToLeft"
	}
	data, err := xml.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	w, err := zw.Create("ComicInfo.xml")
	if err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if _, err := w.Write(append([]byte(xml.Header), data...)); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	l.Info("pages exported", slog.Int("pages", len(p.Pages)))
	return nil
}

func addPage(zw *zip.Writer, app host.App, p *storage.Project, uid, name string) (err error) {
	doc, err := p.OpenPage(app, uid)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := doc.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	img, err := doc.Thumbnail(doc.Width(), doc.Height())
	if err != nil {
		return fmt.Errorf("render page %s: %w", uid, err)
	}
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip add image: %w", err)
	}
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("encode page %s: %w", uid, err)
	}
	return nil
}
