/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ocr is the seam for reading source text out of a masked page
// region. No engine is wired yet.
package ocr

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/fogleman/gg"

	"fantranslator/internal/vector"
)

// ErrNotImplemented is returned by recognizers without an engine.
var ErrNotImplemented = errors.New("ocr: not implemented")

// Recognizer turns an image region into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Unavailable is the placeholder recognizer.
type Unavailable struct{}

func (Unavailable) Recognize(ctx context.Context, _ image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrNotImplemented
}

// Crop copies the part of img covered by r, clipped to the image bounds.
// An empty intersection yields nil.
func Crop(img image.Image, r vector.Rect) image.Image {
	b := img.Bounds()
	x0 := max(int(math.Floor(r.X)), b.Min.X)
	y0 := max(int(math.Floor(r.Y)), b.Min.Y)
	x1 := min(int(math.Ceil(r.X+r.W)), b.Max.X)
	y1 := min(int(math.Ceil(r.Y+r.H)), b.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	dc := gg.NewContext(x1-x0, y1-y0)
	dc.DrawImage(img, -x0, -y0)
	return dc.Image()
}
