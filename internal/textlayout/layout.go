/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Line breaking for translated text regions. Measurement is isolated behind
// Measurer so the wrap itself stays deterministic and testable.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	Size   float64
	Weight int // 100..900, 0 means regular
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
	CapHeight                float64
	LineHeight               float64 // baseline to baseline
	// Scale multiplies advances measured on the face. Fixed-size bitmap faces use it
	// to approximate the requested size.
	Scale float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Measurer is the text measurement capability the wrap needs.
type Measurer interface {
	Advance(spec FontSpec, s string) float64
	Metrics(spec FontSpec) Metrics
}

// Block is a wrapped text ready to be serialized.
type Block struct {
	Lines       []string
	LineHeight  float64
	CapHeight   float64
	LineSpacing float64
	TotalHeight float64
}

// LineAdvance is the vertical distance between two consecutive lines.
func (b Block) LineAdvance() float64 { return b.LineHeight * b.LineSpacing }

// basicSize is the pixel height Face7x13 is drawn at.
const basicSize = 13

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// Requested sizes are honoured by scaling the fixed face.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	scale := 1.0
	if spec.Size > 0 {
		scale = spec.Size / basicSize
	}
	m := metricsOf(f.Metrics())
	m.Ascent *= scale
	m.Descent *= scale
	m.LineGap *= scale
	m.CapHeight *= scale
	m.LineHeight *= scale
	m.Scale = scale
	return f, m
}

func metricsOf(m font.Metrics) Metrics {
	out := Metrics{
		Ascent:     float64(m.Ascent.Round()),
		Descent:    float64(m.Descent.Round()),
		LineGap:    float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
		CapHeight:  float64(m.CapHeight.Round()),
		LineHeight: float64(m.Height.Round()),
		Scale:      1,
	}
	if out.CapHeight <= 0 {
		out.CapHeight = out.Ascent
	}
	if out.LineHeight <= 0 {
		out.LineHeight = out.Ascent + out.Descent
	}
	return out
}

// FaceMeasurer measures with faces resolved by a Provider.
type FaceMeasurer struct{ Provider Provider }

func (m FaceMeasurer) provider() Provider {
	if m.Provider == nil {
		return BasicProvider{}
	}
	return m.Provider
}

func (m FaceMeasurer) Advance(spec FontSpec, s string) float64 {
	face, met := m.provider().Resolve(spec)
	d := &font.Drawer{Face: face}
	return fixedToFloat(d.MeasureString(s)) * met.Scale
}

func (m FaceMeasurer) Metrics(spec FontSpec) Metrics {
	_, met := m.provider().Resolve(spec)
	return met
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Wrap breaks text into lines no wider than maxWidth.
//
// Hard line breaks always start a new line. Within a segment words are placed
// greedily while the running width plus the next word fits; the running width
// counts one space advance after every placed word. A word wider than maxWidth
// sits alone on its own line. Empty input yields a single empty line.
func Wrap(m Measurer, text string, maxWidth float64, spec FontSpec, lineSpacing float64) Block {
	if lineSpacing <= 0 {
		lineSpacing = 1
	}
	met := m.Metrics(spec)
	space := m.Advance(spec, " ")

	var lines []string
	for _, segment := range strings.Split(text, "\n") {
		var cur []string
		curWidth := 0.0
		for _, word := range strings.Fields(segment) {
			w := m.Advance(spec, word)
			if curWidth+w <= maxWidth || len(cur) == 0 {
				cur = append(cur, word)
				curWidth += w + space
				continue
			}
			lines = append(lines, strings.Join(cur, " "))
			cur = []string{word}
			curWidth = w + space
		}
		lines = append(lines, strings.Join(cur, " "))
	}

	return Block{
		Lines:       lines,
		LineHeight:  met.LineHeight,
		CapHeight:   met.CapHeight,
		LineSpacing: lineSpacing,
		TotalHeight: met.LineHeight * lineSpacing * float64(len(lines)),
	}
}

// Width returns the widest line of b as measured by m.
func Width(m Measurer, spec FontSpec, b Block) float64 {
	var w float64
	for _, l := range b.Lines {
		if lw := m.Advance(spec, l); lw > w {
			w = lw
		}
	}
	return w
}
