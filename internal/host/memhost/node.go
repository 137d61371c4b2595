/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package memhost

import (
	"image"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fogleman/gg"

	"fantranslator/internal/host"
	"fantranslator/internal/markup"
	"fantranslator/internal/vector"
)

// Node is a group, vector or paint layer.
type Node struct {
	name     string
	typ      string
	doc      *Document
	parent   *Node
	children []*Node
	shapes   []*Shape
	pixels   image.Image // paint layers only
}

var _ host.Node = (*Node)(nil)

func (n *Node) Name() string { return n.name }
func (n *Node) Type() string { return n.typ }

// Parent returns the containing node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) ChildNodes() []host.Node {
	out := make([]host.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// AddChildNode appends child at the top of n's stack.
func (n *Node) AddChildNode(child host.Node) error {
	c, ok := child.(*Node)
	if !ok || c.doc != n.doc {
		return ErrForeignNode
	}
	if c.parent != nil || c == n.doc.root {
		return ErrAttached
	}
	c.parent = n
	n.children = append(n.children, c)
	return nil
}

func (n *Node) Shapes() []host.Shape {
	if n.typ != host.VectorLayer {
		return nil
	}
	out := make([]host.Shape, len(n.shapes))
	for i, s := range n.shapes {
		out[i] = s
	}
	return out
}

// AddShapesFromSVG splits svg into its top-level elements and appends one shape per element.
func (n *Node) AddShapesFromSVG(svg string) ([]host.Shape, error) {
	if n.typ != host.VectorLayer {
		return nil, ErrNotVectorLayer
	}
	frags, err := splitShapes(svg)
	if err != nil {
		return nil, err
	}
	added := make([]host.Shape, 0, len(frags))
	for _, f := range frags {
		s := &Shape{node: n, svg: f}
		n.shapes = append(n.shapes, s)
		added = append(added, s)
	}
	return added, nil
}

func splitShapes(svg string) ([]string, error) {
	src := strings.TrimSpace(svg)
	if !strings.HasPrefix(src, "<svg") {
		src = "<svg>" + src + "</svg>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	var out []string
	var ferr error
	doc.Find("svg").First().Children().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, err := goquery.OuterHtml(s)
		if err != nil {
			ferr = err
			return false
		}
		out = append(out, h)
		return true
	})
	return out, ferr
}

func (n *Node) paint(dc *gg.Context) {
	switch n.typ {
	case host.PaintLayer:
		if n.pixels != nil {
			dc.DrawImage(n.pixels, 0, 0)
		}
	case host.VectorLayer:
		for _, s := range n.shapes {
			el, err := markup.Parse(s.svg)
			if err != nil || el.Tag() != "text" {
				continue
			}
			drawText(dc, el)
		}
	}
	for _, c := range n.children {
		c.paint(dc)
	}
}

// Shape is one vector element held as markup.
type Shape struct {
	node *Node
	svg  string
}

func (s *Shape) ToSVG() string { return s.svg }

// Remove detaches s from its layer. Removing twice is a no-op.
func (s *Shape) Remove() {
	n := s.node
	if n == nil {
		return
	}
	for i, x := range n.shapes {
		if x == s {
			n.shapes = append(n.shapes[:i], n.shapes[i+1:]...)
			break
		}
	}
	s.node = nil
}

// Select makes s the document's only selected shape.
func (s *Shape) Select() {
	if s.node == nil {
		return
	}
	d := s.node.doc
	d.hasPixSel = false
	d.selected = []*Shape{s}
}

// Layer returns the node holding s, nil once removed.
func (s *Shape) Layer() *Node { return s.node }

// Bounds is the rectangle of rect shapes; other shapes report an empty rect.
func (s *Shape) Bounds() vector.Rect {
	el, err := markup.Parse(s.svg)
	if err != nil || el.Tag() != "rect" {
		return vector.Rect{}
	}
	return el.GuideGeometry()
}
