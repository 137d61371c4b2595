/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package markup builds and reads the SVG fragments exchanged with the host:
// guide rectangles, wrapped text elements and the page metadata carrier.
package markup

import (
	"bytes"
	"fmt"
	"html"

	"fantranslator/internal/textlayout"
	"fantranslator/internal/vector"
)

// Id prefixes and colours shared between writer and reader.
const (
	GuidePrefix = "ft_guide/"
	TextPrefix  = "ft_text/"

	MarkerFill  = "#00deadcd"
	CarrierFill = "#00feadff"
	svgNS       = "http://www.w3.org/2000/svg"
)

// GuideID is the id attribute of the guide rectangle for uid.
func GuideID(uid string) string { return GuidePrefix + uid }

// TextID is both the id of the text element and the content of its marker span.
func TextID(uid string) string { return TextPrefix + uid }

type writer struct {
	buf bytes.Buffer
	err error
}

func (w *writer) f(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(&w.buf, format, args...)
}

func (w *writer) String() string { return w.buf.String() }

func num(v float64) string { return vector.FormatNumber(v) }

func esc(s string) string { return html.EscapeString(s) }

// GuideRect renders the invisible rectangle that defines a region's placement.
func GuideRect(uid string, r vector.Rect) string {
	var w writer
	w.f(`<rect id="%s" transform="%s" fill="none" stroke="#00000000" stroke-width="10" stroke-linecap="square" stroke-linejoin="bevel" width="%s" height="%s"/>`,
		esc(GuideID(uid)), vector.TranslateAttr(r.X, r.Y), num(r.W), num(r.H))
	return w.String()
}

// TextStyle carries the font settings written on a text element.
type TextStyle struct {
	Family string
	Size   float64
}

// TextOptions controls TextElement output.
type TextOptions struct {
	// UID, when set, tags the element and appends the hidden marker span.
	UID string
	// Placement overrides the default transform of (width/2, capHeight).
	Placement *vector.Pt
}

// TextElement serializes a wrapped block. Each line becomes a tspan
// horizontally centred at width/2 and advanced by the line height.
func TextElement(b textlayout.Block, width float64, style TextStyle, opt TextOptions) string {
	id := TextID("i")
	if opt.UID != "" {
		id = TextID(opt.UID)
	}
	transform := vector.TranslateAttr(width/2, b.CapHeight)
	if opt.Placement != nil {
		transform = vector.TranslateAttr(opt.Placement.X, opt.Placement.Y)
	}

	var w writer
	w.f(`<text id="%s" transform="%s" text-rendering="auto" text-anchor="middle" fill="#000000" stroke-opacity="0" stroke="#000000" stroke-width="0" stroke-linecap="square" stroke-linejoin="bevel" kerning="none" letter-spacing="0" word-spacing="0" style="%s">`,
		esc(id), transform, esc(styleAttr(style)))
	dy := num(b.LineAdvance())
	cx := num(width / 2)
	for _, line := range b.Lines {
		w.f(`<tspan x="%s" dy="%s">%s</tspan>`, cx, dy, esc(line))
	}
	if opt.UID != "" {
		w.f(`<tspan x="0" style="fill:%s">%s</tspan>`, MarkerFill, esc(TextID(opt.UID)))
	}
	w.f(`</text>`)
	return w.String()
}

func styleAttr(s TextStyle) string {
	return fmt.Sprintf("text-align:start;text-align-last:auto;font-family:%s;font-size:%s", s.Family, num(s.Size))
}

// Document wraps fragments into a standalone SVG of the given pixel size.
// Zero dimensions are omitted.
func Document(width, height int, fragments ...string) string {
	var w writer
	if width > 0 && height > 0 {
		w.f(`<svg xmlns="%s" width="%d" height="%d">`, svgNS, width, height)
	} else {
		w.f(`<svg xmlns="%s">`, svgNS)
	}
	for _, frag := range fragments {
		w.f("%s", frag)
	}
	w.f(`</svg>`)
	return w.String()
}

// Carrier renders the hidden metadata shape holding payload as escaped text.
func Carrier(payload string) string {
	return Document(0, 0, fmt.Sprintf(`<text fill="%s"><tspan x="0">%s</tspan></text>`, CarrierFill, esc(payload)))
}
