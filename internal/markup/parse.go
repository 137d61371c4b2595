/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markup

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fantranslator/internal/vector"
)

// ErrNoElement is returned when markup holds no element at all.
var ErrNoElement = errors.New("markup has no element")

// Default guide size used when width or height is missing or unparsable.
const (
	DefaultGuideW = 100
	DefaultGuideH = 50
)

// Element is a parsed shape fragment.
type Element struct {
	sel *goquery.Selection
}

// Parse reads one shape's markup. A surrounding <svg> root is unwrapped so
// both bare elements and full documents are accepted.
func Parse(svg string) (Element, error) {
	// the HTML5 parser treats everything inside <svg> as foreign content,
	// which keeps self-closing tags and case of the text intact
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<svg>" + svg + "</svg>"))
	if err != nil {
		return Element{}, err
	}
	sel := doc.Find("svg").First().Children().First()
	for sel.Length() > 0 && goquery.NodeName(sel) == "svg" {
		sel = sel.Children().First()
	}
	if sel.Length() == 0 {
		return Element{}, ErrNoElement
	}
	return Element{sel: sel}, nil
}

// Tag is the element name, for example "rect" or "text".
func (e Element) Tag() string { return goquery.NodeName(e.sel) }

// ID returns the element's own id attribute.
func (e Element) ID() string {
	id, _ := e.sel.Attr("id")
	return id
}

// Attr returns an attribute value.
func (e Element) Attr(name string) (string, bool) { return e.sel.Attr(name) }

// HasMarker reports whether a descendant tspan carries exactly the marker for uid.
func (e Element) HasMarker(uid string) bool {
	want := TextID(uid)
	found := false
	e.sel.Find("tspan").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Text() == want {
			found = true
			return false
		}
		return true
	})
	return found
}

// MarkerUID returns the uid encoded in the element's marker span, if any.
func (e Element) MarkerUID() (string, bool) {
	var uid string
	e.sel.Find("tspan").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := s.Text(); strings.HasPrefix(t, TextPrefix) {
			uid = strings.TrimPrefix(t, TextPrefix)
			return false
		}
		return true
	})
	return uid, uid != ""
}

// Lines returns the text of every tspan that is not the marker span.
func (e Element) Lines() []string {
	var out []string
	e.sel.Find("tspan").Each(func(_ int, s *goquery.Selection) {
		if t := s.Text(); !strings.HasPrefix(t, TextPrefix) {
			out = append(out, t)
		}
	})
	return out
}

// Text returns the element's text content with entities decoded.
func (e Element) Text() string { return e.sel.Text() }

// GuideGeometry reads the rectangle a guide describes. The origin comes from
// the transform (translate or matrix) applied to the x/y attributes, the size
// from width/height scaled by the transform. A transform that cannot be parsed
// places the guide at (0,0); missing sizes default to 100x50.
func (e Element) GuideGeometry() vector.Rect {
	m, err := vector.ParseTransform(attr(e.sel, "transform"))
	if err != nil {
		m = vector.Identity
	}
	x := parseFloat(attr(e.sel, "x"), 0)
	y := parseFloat(attr(e.sel, "y"), 0)
	w := parseFloat(attr(e.sel, "width"), DefaultGuideW)
	h := parseFloat(attr(e.sel, "height"), DefaultGuideH)
	o := m.Apply(vector.Pt{X: x, Y: y})
	sx, sy := m.ScaleFactors()
	return vector.Rect{X: o.X, Y: o.Y, W: w * sx, H: h * sy}
}

// CarrierPayload returns the text of the carrier's first tspan, unescaped.
func (e Element) CarrierPayload() (string, bool) {
	sp := e.sel.Find("tspan").First()
	if sp.Length() == 0 {
		if e.Tag() == "text" {
			return e.sel.Text(), true
		}
		return "", false
	}
	return sp.Text(), true
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	// tolerate unit suffixes such as "px"
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// TextPlacement describes where a text element draws its lines.
type TextPlacement struct {
	Origin      vector.Pt // from the transform
	CenterX     float64   // x of the first line span, relative to Origin
	LineAdvance float64   // dy of the first line span
	FontSize    float64
}

// Placement reads the layout attributes of a text element. Missing values are zero.
func (e Element) Placement() TextPlacement {
	m, err := vector.ParseTransform(attr(e.sel, "transform"))
	if err != nil {
		m = vector.Identity
	}
	p := TextPlacement{Origin: m.Apply(vector.Pt{})}
	first := e.sel.Find("tspan").First()
	p.CenterX = parseFloat(attr(first, "x"), 0)
	p.LineAdvance = parseFloat(attr(first, "dy"), 0)
	for _, decl := range strings.Split(attr(e.sel, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "font-size" {
			p.FontSize = parseFloat(strings.TrimSpace(v), 0)
		}
	}
	return p
}
