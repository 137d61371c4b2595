/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package memhost

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"fantranslator/internal/host"
	"fantranslator/internal/markup"
	"fantranslator/internal/vector"
)

// Document is one page: a node tree rooted in an unnamed group.
type Document struct {
	app    *App
	path   string
	width  int
	height int
	root   *Node
	active *Node
	closed bool

	selected  []*Shape
	pixelSel  vector.Rect
	hasPixSel bool
}

var _ host.Document = (*Document)(nil)

func newDocument(w, h int) *Document {
	d := &Document{width: w, height: h}
	d.root = &Node{typ: host.GroupLayer, doc: d}
	return d
}

func (d *Document) FileName() string { return d.path }
func (d *Document) Width() int       { return d.width }
func (d *Document) Height() int      { return d.height }

func (d *Document) TopLevelNodes() []host.Node { return d.root.ChildNodes() }
func (d *Document) RootNode() host.Node        { return d.root }

// Root is RootNode with the concrete type.
func (d *Document) Root() *Node { return d.root }

func (d *Document) CreateNode(name, nodeType string) (host.Node, error) {
	switch nodeType {
	case host.GroupLayer, host.VectorLayer, host.PaintLayer:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}
	n := &Node{name: name, typ: nodeType, doc: d}
	if nodeType == host.PaintLayer {
		n.pixels = image.NewNRGBA(image.Rect(0, 0, d.width, d.height))
	}
	return n, nil
}

func (d *Document) ActiveNode() host.Node {
	if d.active == nil {
		return nil
	}
	return d.active
}

func (d *Document) SetActiveNode(n host.Node) {
	if n == nil {
		d.active = nil
		return
	}
	if mn, ok := n.(*Node); ok && mn.doc == d {
		d.active = mn
	}
}

// SelectRect sets a pixel selection, replacing any shape selection.
func (d *Document) SelectRect(r vector.Rect) {
	d.selected = nil
	d.pixelSel = r
	d.hasPixSel = true
}

// ClearSelection drops shape and pixel selections.
func (d *Document) ClearSelection() {
	d.selected = nil
	d.hasPixSel = false
}

// Selection returns the pixel selection when present, otherwise the union of
// the selected shapes' bounds.
func (d *Document) Selection() (vector.Rect, bool) {
	if d.hasPixSel {
		return d.pixelSel, true
	}
	var r vector.Rect
	for _, s := range d.selected {
		if s.node == nil {
			continue
		}
		r = r.Union(s.Bounds())
	}
	return r, !r.Empty()
}

// SelectedShapes returns the shapes selected through Shape.Select.
func (d *Document) SelectedShapes() []*Shape {
	out := make([]*Shape, 0, len(d.selected))
	for _, s := range d.selected {
		if s.node != nil {
			out = append(out, s)
		}
	}
	return out
}

// SaveAs writes the document. The extension picks the format: .ftdoc keeps
// the full node tree and makes path the document's file name; .png and .jpg
// write a flattened render.
func (d *Document) SaveAs(path string) error {
	if d.closed {
		return ErrClosed
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case Ext:
		if err := writeFile(d, path); err != nil {
			return err
		}
		d.path = path
		return nil
	case ".png":
		return gg.SavePNG(path, d.Render(d.width, d.height))
	case ".jpg", ".jpeg":
		return gg.SaveJPG(path, d.Render(d.width, d.height), 90)
	default:
		return fmt.Errorf("save %s: unsupported extension", filepath.Base(path))
	}
}

// Save writes the document back to its own .ftdoc file.
func (d *Document) Save() error {
	if !strings.EqualFold(filepath.Ext(d.path), Ext) {
		return fmt.Errorf("save: document has no %s file name", Ext)
	}
	return d.SaveAs(d.path)
}

func (d *Document) Thumbnail(w, h int) (image.Image, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("thumbnail size %dx%d", w, h)
	}
	return d.Render(w, h), nil
}

func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.app != nil {
		d.app.forget(d)
	}
	return nil
}

// Render flattens the document into a w x h image: paint layers are drawn
// scaled, text shapes are drawn with the built-in face. The metadata carrier
// is never drawn.
func (d *Document) Render(w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if d.width > 0 && d.height > 0 {
		dc.Scale(float64(w)/float64(d.width), float64(h)/float64(d.height))
	}
	d.root.paint(dc)
	return dc.Image()
}

func drawText(dc *gg.Context, el markup.Element) {
	if fill, _ := el.Attr("fill"); fill == markup.CarrierFill {
		return
	}
	p := el.Placement()
	scale := 1.0
	if p.FontSize > 0 {
		scale = p.FontSize / 13
	}
	dc.SetRGB(0, 0, 0)
	y := p.Origin.Y
	for _, line := range el.Lines() {
		y += p.LineAdvance
		dc.Push()
		dc.Translate(p.Origin.X+p.CenterX, y)
		dc.Scale(scale, scale)
		dc.DrawStringAnchored(line, 0, 0, 0.5, 0)
		dc.Pop()
	}
}
