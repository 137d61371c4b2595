/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ocr

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantranslator/internal/vector"
)

func TestUnavailableRecognizer(t *testing.T) {
	var r Recognizer = Unavailable{}
	_, err := r.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrNotImplemented)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCropClipsToImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	src.Set(90, 40, color.RGBA{R: 255, A: 255})

	out := Crop(src, vector.R(80, 30, 40, 40))
	require.NotNil(t, out)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
	r, _, _, a := out.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	assert.Nil(t, Crop(src, vector.R(200, 200, 10, 10)))
}
