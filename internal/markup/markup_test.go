/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantranslator/internal/textlayout"
	"fantranslator/internal/vector"
)

func TestGuideRectRoundTrip(t *testing.T) {
	frag := GuideRect("abc", vector.R(120, 80.5, 200, 90))
	assert.Contains(t, frag, `id="ft_guide/abc"`)
	assert.Contains(t, frag, `transform="translate(120, 80.5)"`)

	el, err := Parse(frag)
	require.NoError(t, err)
	assert.Equal(t, "rect", el.Tag())
	assert.Equal(t, GuideID("abc"), el.ID())
	assert.Equal(t, vector.R(120, 80.5, 200, 90), el.GuideGeometry())
}

func TestGuideGeometryDefaultsAndMatrix(t *testing.T) {
	el, err := Parse(`<rect id="ft_guide/x" transform="matrix(1 0 0 1 30 40)"/>`)
	require.NoError(t, err)
	assert.Equal(t, vector.R(30, 40, DefaultGuideW, DefaultGuideH), el.GuideGeometry())

	el, err = Parse(`<rect transform="translate(oops)" width="10" height="20"/>`)
	require.NoError(t, err)
	assert.Equal(t, vector.R(0, 0, 10, 20), el.GuideGeometry(), "malformed transform falls back to the origin")

	el, err = Parse(`<rect transform="matrix(2 0 0 2 5 5)" width="10" height="20"/>`)
	require.NoError(t, err)
	assert.Equal(t, vector.R(5, 5, 20, 40), el.GuideGeometry())
}

func TestTextElementLayout(t *testing.T) {
	b := textlayout.Block{Lines: []string{"Hello", "World & co"}, LineHeight: 20, CapHeight: 14, LineSpacing: 1.5, TotalHeight: 60}
	frag := TextElement(b, 100, TextStyle{Family: "Arial", Size: 24}, TextOptions{})
	assert.Contains(t, frag, `transform="translate(50, 14)"`)
	assert.Equal(t, 2, strings.Count(frag, `<tspan x="50" dy="30">`))
	assert.Contains(t, frag, "font-family:Arial;font-size:24")

	el, err := Parse(frag)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "World & co"}, el.Lines())
	_, ok := el.MarkerUID()
	assert.False(t, ok)
}

func TestTextElementMarkerAndPlacement(t *testing.T) {
	b := textlayout.Block{Lines: []string{"Hi"}, LineHeight: 10, CapHeight: 7, LineSpacing: 1, TotalHeight: 10}
	frag := TextElement(b, 80, TextStyle{Family: "Go", Size: 12}, TextOptions{UID: "u-1", Placement: &vector.Pt{X: 10, Y: 20}})
	assert.Contains(t, frag, `id="ft_text/u-1"`)
	assert.Contains(t, frag, `transform="translate(10, 20)"`)
	assert.Contains(t, frag, `<tspan x="0" style="fill:#00deadcd">ft_text/u-1</tspan>`)

	el, err := Parse(Document(640, 480, frag))
	require.NoError(t, err)
	assert.Equal(t, "text", el.Tag())
	assert.True(t, el.HasMarker("u-1"))
	assert.False(t, el.HasMarker("u"), "marker match must be exact")
	uid, ok := el.MarkerUID()
	require.True(t, ok)
	assert.Equal(t, "u-1", uid)
	assert.Equal(t, []string{"Hi"}, el.Lines())
}

func TestCarrierEscapesPayload(t *testing.T) {
	payload := `[{"uid":"a","orig":"<b>","tran":"Tom & \"Jerry\"","font":"Arial","size":24}]`
	frag := Carrier(payload)
	assert.NotContains(t, frag, "<b>")
	assert.Contains(t, frag, `fill="#00feadff"`)

	el, err := Parse(frag)
	require.NoError(t, err)
	got, ok := el.CarrierPayload()
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrNoElement)
}

func TestPlacementReadsLayoutAttributes(t *testing.T) {
	b := textlayout.Block{Lines: []string{"A", "B"}, LineHeight: 12, CapHeight: 9, LineSpacing: 1, TotalHeight: 24}
	frag := TextElement(b, 60, TextStyle{Family: "Go", Size: 18}, TextOptions{UID: "p", Placement: &vector.Pt{X: 5, Y: 6}})
	el, err := Parse(frag)
	require.NoError(t, err)
	p := el.Placement()
	assert.Equal(t, vector.Pt{X: 5, Y: 6}, p.Origin)
	assert.Equal(t, 30.0, p.CenterX)
	assert.Equal(t, 12.0, p.LineAdvance)
	assert.Equal(t, 18.0, p.FontSize)
}
