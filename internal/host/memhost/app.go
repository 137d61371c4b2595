/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package memhost is an in-process document model implementing the host
// interfaces. Documents persist as self-contained .ftdoc JSON files so the
// translator can run without an external editor.
package memhost

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	// extra decoders for page import; png, jpeg and gif come with gg
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
)

// Ext is the file extension of memhost documents.
const Ext = ".ftdoc"

// BackgroundLayer names the paint layer holding an imported image.
const BackgroundLayer = "Background"

var (
	ErrClosed          = errors.New("document is closed")
	ErrForeignNode     = errors.New("node belongs to another host or document")
	ErrAttached        = errors.New("node already has a parent")
	ErrNotVectorLayer  = errors.New("node is not a vector layer")
	ErrUnknownNodeType = errors.New("unknown node type")
)

// App tracks open documents and the active one.
type App struct {
	docs   []*Document
	active *Document
}

var _ host.App = (*App)(nil)

func NewApp() *App { return &App{} }

// ActiveDocument returns the active document or nil.
func (a *App) ActiveDocument() host.Document {
	if a.active == nil {
		return nil
	}
	return a.active
}

// Active is ActiveDocument with the concrete type.
func (a *App) Active() *Document { return a.active }

// Activate makes doc the active document. nil clears it.
func (a *App) Activate(doc *Document) { a.active = doc }

// Documents returns the open documents in opening order.
func (a *App) Documents() []*Document {
	out := make([]*Document, len(a.docs))
	copy(out, a.docs)
	return out
}

func (a *App) NativeExt() string { return Ext }

// OpenDocument loads a .ftdoc file or imports an image as a new single-layer document.
// Opening does not change the active document.
func (a *App) OpenDocument(path string) (host.Document, error) {
	d, err := a.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Open is OpenDocument with the concrete type.
func (a *App) Open(path string) (*Document, error) {
	l := applog.WithComponent("memhost").With(slog.String("path", path))
	var (
		d   *Document
		err error
	)
	if strings.EqualFold(filepath.Ext(path), Ext) {
		d, err = readFile(path)
	} else {
		d, err = importImage(path)
	}
	if err != nil {
		l.Debug("open failed", slog.Any("err", err))
		return nil, err
	}
	d.app = a
	a.docs = append(a.docs, d)
	l.Debug("document opened", slog.Int("w", d.width), slog.Int("h", d.height))
	return d, nil
}

// New creates an empty document of the given size.
func (a *App) New(width, height int) *Document {
	d := newDocument(width, height)
	d.app = a
	a.docs = append(a.docs, d)
	return d
}

func (a *App) forget(d *Document) {
	for i, x := range a.docs {
		if x == d {
			a.docs = append(a.docs[:i], a.docs[i+1:]...)
			break
		}
	}
	if a.active == d {
		a.active = nil
		if n := len(a.docs); n > 0 {
			a.active = a.docs[n-1]
		}
	}
}

func importImage(path string) (*Document, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	b := img.Bounds()
	d := newDocument(b.Dx(), b.Dy())
	bg := &Node{name: BackgroundLayer, typ: host.PaintLayer, doc: d, pixels: img}
	if err := d.root.AddChildNode(bg); err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}
