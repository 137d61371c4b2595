/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"reflect"
	"strings"
	"testing"
)

// tableMeasurer gives fixed advances per word; unknown strings cost 10px per rune.
type tableMeasurer struct {
	widths map[string]float64
	met    Metrics
}

func (m tableMeasurer) Advance(_ FontSpec, s string) float64 {
	if w, ok := m.widths[s]; ok {
		return w
	}
	return float64(len([]rune(s))) * 10
}

func (m tableMeasurer) Metrics(FontSpec) Metrics { return m.met }

func helloWorld() tableMeasurer {
	return tableMeasurer{
		widths: map[string]float64{"Hello": 60, "World": 60, " ": 5},
		met:    Metrics{LineHeight: 20, CapHeight: 14},
	}
}

func TestWrap_HardBreakForcesNewLine(t *testing.T) {
	b := Wrap(helloWorld(), "Hello\nWorld", 100, FontSpec{}, 1)
	if !reflect.DeepEqual(b.Lines, []string{"Hello", "World"}) {
		t.Fatalf("unexpected lines: %q", b.Lines)
	}
	if b.TotalHeight != 40 {
		t.Fatalf("TotalHeight = %v, want 40", b.TotalHeight)
	}
}

func TestWrap_GreedyCountsTrailingSpace(t *testing.T) {
	m := helloWorld()
	// 60 + 5 + 60 = 125 > 100 -> two lines
	b := Wrap(m, "Hello World", 100, FontSpec{}, 1)
	if !reflect.DeepEqual(b.Lines, []string{"Hello", "World"}) {
		t.Fatalf("unexpected lines at 100: %q", b.Lines)
	}
	// 65 + 60 = 125 <= 125 -> fits
	b = Wrap(m, "Hello World", 125, FontSpec{}, 1)
	if !reflect.DeepEqual(b.Lines, []string{"Hello World"}) {
		t.Fatalf("unexpected lines at 125: %q", b.Lines)
	}
}

func TestWrap_EmptyInputYieldsOneEmptyLine(t *testing.T) {
	b := Wrap(helloWorld(), "", 100, FontSpec{}, 1.5)
	if !reflect.DeepEqual(b.Lines, []string{""}) {
		t.Fatalf("unexpected lines: %q", b.Lines)
	}
	if b.TotalHeight != 30 {
		t.Fatalf("TotalHeight = %v, want 30", b.TotalHeight)
	}
}

func TestWrap_EmptyHardSegmentsKept(t *testing.T) {
	b := Wrap(helloWorld(), "Hello\n\nWorld", 500, FontSpec{}, 1)
	if !reflect.DeepEqual(b.Lines, []string{"Hello", "", "World"}) {
		t.Fatalf("unexpected lines: %q", b.Lines)
	}
}

func TestWrap_OverflowWordSitsAlone(t *testing.T) {
	m := helloWorld()
	// every word is wider than the budget
	b := Wrap(m, "aaaaaaaaaaaa bbbbbbbbbbbbbbbb cc", 50, FontSpec{}, 1)
	want := []string{"aaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", "cc"}
	if !reflect.DeepEqual(b.Lines, want) {
		t.Fatalf("unexpected lines: %q", b.Lines)
	}
	for _, l := range b.Lines {
		if l == "" {
			t.Fatalf("no empty line may precede an overflowing word: %q", b.Lines)
		}
		if m.Advance(FontSpec{}, l) > 50 && strings.Contains(l, " ") {
			t.Fatalf("line %q exceeds width and is not a single word", l)
		}
	}
}

func TestWrap_BasicProviderDeterministic(t *testing.T) {
	m := FaceMeasurer{Provider: BasicProvider{}}
	spec := FontSpec{Family: "Anything", Size: 13}
	if got := m.Advance(spec, "ABC"); got != 21 {
		t.Fatalf("Advance(ABC) = %v, want 21", got)
	}
	b := Wrap(m, "Hello world from Go", 50, spec, 1)
	if len(b.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %q", b.Lines)
	}
	if b.LineHeight != 13 || b.CapHeight <= 0 {
		t.Fatalf("unexpected metrics: %+v", b)
	}
	if w := Width(m, spec, b); w > 50 {
		t.Fatalf("widest line %v exceeds budget", w)
	}
}

func TestBasicProviderScalesToRequestedSize(t *testing.T) {
	m := FaceMeasurer{}
	small := m.Advance(FontSpec{Size: 13}, "Hello")
	big := m.Advance(FontSpec{Size: 26}, "Hello")
	if big != 2*small {
		t.Fatalf("expected double advance at double size, got %v vs %v", big, small)
	}
	if lh := m.Metrics(FontSpec{Size: 26}).LineHeight; lh != 26 {
		t.Fatalf("LineHeight at 26 = %v", lh)
	}
}
