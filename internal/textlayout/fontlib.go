/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	applog "fantranslator/internal/log"
)

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// Family lookups are case-insensitive. Variations beyond weight and italic
// are not modelled.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
	names map[string]string // lower-case family -> display family
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[fontKey]*opentype.Font), names: make(map[string]string)}
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.add(family, weight, italic, f)
	return nil
}

func (fl *FontLibrary) add(family string, weight int, italic bool, f *opentype.Font) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
		fl.names = make(map[string]string)
	}
	key := strings.ToLower(family)
	fl.fonts[fontKey{family: key, weight: weight, italic: italic}] = f
	if _, ok := fl.names[key]; !ok {
		fl.names[key] = family
	}
}

// LoadDirs walks dirs for .ttf/.otf files and registers each under the family
// name stored in the font. Unreadable files are logged and skipped; the number
// of fonts loaded is returned.
func (fl *FontLibrary) LoadDirs(dirs ...string) int {
	l := applog.WithComponent("fonts")
	n := 0
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				l.Debug("font dir skipped", slog.String("path", path), slog.Any("err", err))
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if d.IsDir() || (ext != ".ttf" && ext != ".otf") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				l.Warn("font unreadable", slog.String("path", path), slog.Any("err", err))
				return nil
			}
			f, err := opentype.Parse(data)
			if err != nil {
				l.Warn("font unparsable", slog.String("path", path), slog.Any("err", err))
				return nil
			}
			family := familyName(f)
			if family == "" {
				family = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			fl.add(family, 0, false, f)
			n++
			return nil
		})
	}
	return n
}

func familyName(f *opentype.Font) string {
	var buf sfnt.Buffer
	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily} {
		if s, err := f.Name(&buf, id); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// Families lists the loaded family names, sorted.
func (fl *FontLibrary) Families() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	out := make([]string, 0, len(fl.names))
	for _, v := range fl.names {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	family := strings.ToLower(spec.Family)
	if f, ok := fl.fonts[fontKey{family: family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	// same family, any weight/italic
	for k, f := range fl.fonts {
		if k.family == family {
			return f
		}
	}
	return nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Faces are cached per spec.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]cachedFace
}

type cachedFace struct {
	face font.Face
	met  Metrics
}

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.faces[spec]; ok {
		return c.face, c.met
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			met := metricsOf(face.Metrics())
			if p.faces == nil {
				p.faces = make(map[FontSpec]cachedFace)
			}
			p.faces[spec] = cachedFace{face: face, met: met}
			return face, met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
