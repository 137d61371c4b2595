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
	"strconv"
	"strings"
)

// ErrBadTransform is returned for transform lists that cannot be parsed.
var ErrBadTransform = errors.New("malformed transform")

// ParseTransform parses an SVG transform list such as
// "translate(10, 20) scale(2)" or "matrix(1 0 0 1 5 6)".
// Supported functions: translate, scale, rotate (degrees, optional centre) and matrix.
// An empty string yields the identity.
func ParseTransform(s string) (Affine2D, error) {
	m := Identity
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closeIdx := strings.IndexByte(rest, ')')
		if open <= 0 || closeIdx < open {
			return Identity, ErrBadTransform
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseArgs(rest[open+1 : closeIdx])
		if err != nil {
			return Identity, err
		}
		t, err := transformFunc(name, args)
		if err != nil {
			return Identity, err
		}
		m = m.Mul(t)
		rest = strings.TrimLeft(rest[closeIdx+1:], " \t\r\n,")
	}
	return m, nil
}

func transformFunc(name string, a []float64) (Affine2D, error) {
	switch name {
	case "translate":
		switch len(a) {
		case 1:
			return Translate(a[0], 0), nil
		case 2:
			return Translate(a[0], a[1]), nil
		}
	case "scale":
		switch len(a) {
		case 1:
			return Scale(a[0], a[0]), nil
		case 2:
			return Scale(a[0], a[1]), nil
		}
	case "rotate":
		switch len(a) {
		case 1:
			return Rotate(a[0] * math.Pi / 180), nil
		case 3:
			return Translate(a[1], a[2]).Mul(Rotate(a[0] * math.Pi / 180)).Mul(Translate(-a[1], -a[2])), nil
		}
	case "matrix":
		if len(a) == 6 {
			return Affine2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
		}
	}
	return Identity, ErrBadTransform
}

func parseArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, ErrBadTransform
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatNumber writes v the way markup attributes expect: shortest form, no exponent.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(FloatRound(v, 4), 'f', -1, 64)
}

// TranslateAttr renders "translate(x, y)".
func TranslateAttr(x, y float64) string {
	return "translate(" + FormatNumber(x) + ", " + FormatNumber(y) + ")"
}
