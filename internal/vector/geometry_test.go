/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"math"
	"testing"
)

func TestRectContainsAndUnion(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	u := r.Union(R(0, 0, 20, 20))
	if u.X != 0 || u.Y != 0 || u.W != 110 || u.H != 70 {
		t.Fatalf("unexpected union: %+v", u)
	}
	if got := (Rect{}).Union(r); got != r {
		t.Fatalf("empty union operand should be ignored, got %+v", got)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
	sx, sy := m.ScaleFactors()
	if sx != 2 || sy != 3 {
		t.Fatalf("unexpected scale factors: %v %v", sx, sy)
	}
}

func TestParseTransformForms(t *testing.T) {
	cases := []struct {
		in   string
		want Pt
	}{
		{"", Pt{0, 0}},
		{"translate(100, 100)", Pt{100, 100}},
		{"translate(7)", Pt{7, 0}},
		{"matrix(1 0 0 1 12.5 -3)", Pt{12.5, -3}},
		{"translate(10,10) scale(2)", Pt{10, 10}},
	}
	for _, c := range cases {
		m, err := ParseTransform(c.in)
		if err != nil {
			t.Fatalf("ParseTransform(%q) error: %v", c.in, err)
		}
		if got := m.Apply(Pt{}); got != c.want {
			t.Fatalf("ParseTransform(%q) origin = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseTransformRotateAboutCentre(t *testing.T) {
	m, err := ParseTransform("rotate(90 10 10)")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	p := m.Apply(Pt{20, 10})
	if math.Abs(p.X-10) > 1e-9 || math.Abs(p.Y-20) > 1e-9 {
		t.Fatalf("unexpected rotation result: %+v", p)
	}
}

func TestParseTransformRejectsGarbage(t *testing.T) {
	for _, in := range []string{"translate(a, b)", "skew(", "matrix(1 2 3)", "nonsense"} {
		if _, err := ParseTransform(in); !errors.Is(err, ErrBadTransform) {
			t.Fatalf("ParseTransform(%q) err = %v, want ErrBadTransform", in, err)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(50); got != "50" {
		t.Fatalf("FormatNumber(50) = %q", got)
	}
	if got := FormatNumber(12.345678); got != "12.3457" {
		t.Fatalf("FormatNumber(12.345678) = %q", got)
	}
	if got := TranslateAttr(100, 62.5); got != "translate(100, 62.5)" {
		t.Fatalf("TranslateAttr = %q", got)
	}
}
