/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"context"
	"errors"
	"log/slog"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
	"fantranslator/internal/markup"
	"fantranslator/internal/textlayout"
	"fantranslator/internal/vector"
)

// PersistFunc is called after the carrier of doc has been rewritten.
type PersistFunc func(doc host.Document, pairs []domain.TranslationPair)

// Options configure a Synchronizer. Zero values fall back to defaults.
type Options struct {
	Measurer    textlayout.Measurer
	LineSpacing float64
	DefaultFont string
	DefaultSize int
	OnPersist   PersistFunc
}

// Stats counts what ticks did. Reading it is how callers and tests observe idempotence.
type Stats struct {
	Ticks         int
	Reloads       int
	Rewrites      int
	Skips         int
	Misses        int
	CarrierWrites int
}

// cacheKey is everything that decides a text shape's markup.
type cacheKey struct {
	rect vector.Rect
	text string
	font string
	size int
}

// Synchronizer owns the pair list of the active page and reconciles it with
// the page's text shapes on every tick. It is not safe for concurrent use;
// run it from the scheduler goroutine.
type Synchronizer struct {
	app  host.App
	opts Options
	log  *slog.Logger

	doc      host.Document
	pairs    []domain.TranslationPair
	cache    map[string]cacheKey
	index    *ShapeIndex
	snapshot string
	stats    Stats
}

// NewSynchronizer creates a synchronizer bound to app.
func NewSynchronizer(app host.App, opts Options) *Synchronizer {
	if opts.Measurer == nil {
		opts.Measurer = textlayout.FaceMeasurer{}
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = 1
	}
	if opts.DefaultFont == "" {
		opts.DefaultFont = domain.DefaultFont
	}
	if opts.DefaultSize <= 0 {
		opts.DefaultSize = domain.DefaultSize
	}
	return &Synchronizer{
		app:   app,
		opts:  opts,
		log:   applog.WithComponent("sync"),
		cache: make(map[string]cacheKey),
		index: NewShapeIndex(),
	}
}

// Document is the document the pairs belong to, nil before the first load.
func (s *Synchronizer) Document() host.Document { return s.doc }

// Pairs returns a copy of the current pair list.
func (s *Synchronizer) Pairs() []domain.TranslationPair { return domain.ClonePairs(s.pairs) }

// Stats returns the counters accumulated so far.
func (s *Synchronizer) Stats() Stats { return s.stats }

// Tick runs one reconciliation pass. It never fails: problems are logged and
// the affected pair is retried on the next tick.
func (s *Synchronizer) Tick(ctx context.Context) {
	doc := s.app.ActiveDocument()
	if doc == nil {
		return
	}
	ctx = applog.ContextWithDocument(ctx, doc.FileName())
	s.stats.Ticks++
	s.ensureLoaded(ctx, doc)

	for _, p := range s.pairs {
		s.syncPair(ctx, doc, p)
	}
	s.persist(ctx, doc)
}

// ensureLoaded reloads the pair list when doc is not the last synchronized document.
func (s *Synchronizer) ensureLoaded(ctx context.Context, doc host.Document) {
	if doc == s.doc {
		return
	}
	s.doc = doc
	s.pairs = nil
	s.cache = make(map[string]cacheKey)
	s.index.Reset()
	s.stats.Reloads++

	pairs, err := LoadPairs(doc)
	switch {
	case errors.Is(err, ErrNoCarrier):
		s.log.DebugContext(ctx, "page has no carrier yet")
	case err != nil:
		s.log.WarnContext(ctx, "carrier unreadable, starting empty", slog.Any("err", err))
	default:
		s.pairs = pairs
	}
	s.index.Rebuild(doc)
	s.snapshot, _ = EncodePairs(s.pairs)
	s.log.DebugContext(ctx, "pairs loaded", slog.Int("pairs", len(s.pairs)), slog.Int("indexed", s.index.Len()))
}

func (s *Synchronizer) shapesFor(doc host.Document, uid string) (handles, bool) {
	grp, err := TextGroup(doc)
	if err != nil {
		return handles{}, false
	}
	if h, ok := s.index.lookup(grp, uid); ok {
		return h, true
	}
	layer, guide, text := scanPairShapes(doc, uid)
	if guide == nil {
		s.index.Forget(uid)
		return handles{}, false
	}
	s.index.Put(uid, layer, guide, text)
	return handles{layer: layer, guide: guide, text: text}, true
}

func (s *Synchronizer) style(p domain.TranslationPair) (string, int) {
	font, size := p.Font, p.Size
	if font == "" {
		font = s.opts.DefaultFont
	}
	if size <= 0 {
		size = s.opts.DefaultSize
	}
	return font, size
}

func (s *Synchronizer) syncPair(ctx context.Context, doc host.Document, p domain.TranslationPair) {
	l := s.log.With(slog.String("uid", p.UID))
	h, ok := s.shapesFor(doc, p.UID)
	if !ok {
		s.stats.Misses++
		l.DebugContext(ctx, "no guide shape, skipped")
		return
	}
	var rect vector.Rect
	if el, err := markup.Parse(h.guide.ToSVG()); err == nil {
		rect = el.GuideGeometry()
	} else {
		l.WarnContext(ctx, "guide markup unreadable", slog.Any("err", err))
	}

	font, size := s.style(p)
	key := cacheKey{rect: rect, text: p.Translated, font: font, size: size}
	if memo, ok := s.cache[p.UID]; ok && memo == key && h.text != nil {
		s.stats.Skips++
		return
	}

	frag := s.renderText(p.UID, p.Translated, rect, font, size)
	if h.text != nil {
		h.text.Remove()
	}
	added, err := h.layer.AddShapesFromSVG(markup.Document(doc.Width(), doc.Height(), frag))
	if err != nil || len(added) == 0 {
		delete(s.cache, p.UID)
		s.index.Put(p.UID, h.layer, h.guide, nil)
		l.WarnContext(ctx, "text shape not written", slog.Any("err", err))
		return
	}
	s.index.Put(p.UID, h.layer, h.guide, added[0])
	s.cache[p.UID] = key
	s.stats.Rewrites++
	l.DebugContext(ctx, "text shape rewritten", slog.Float64("w", rect.W), slog.Float64("h", rect.H))
}

// renderText lays text out against the guide width and centres the block vertically in the guide.
func (s *Synchronizer) renderText(uid, text string, rect vector.Rect, font string, size int) string {
	spec := textlayout.FontSpec{Family: font, Size: float64(size)}
	block := textlayout.Wrap(s.opts.Measurer, text, rect.W, spec, s.opts.LineSpacing)
	top := rect.Y + rect.H/2 - block.TotalHeight/2
	return markup.TextElement(block, rect.W, markup.TextStyle{Family: font, Size: float64(size)},
		markup.TextOptions{UID: uid, Placement: &vector.Pt{X: rect.X, Y: top}})
}

func (s *Synchronizer) persist(ctx context.Context, doc host.Document) {
	payload, err := EncodePairs(s.pairs)
	if err != nil {
		s.log.ErrorContext(ctx, "pairs not encodable", slog.Any("err", err))
		return
	}
	if payload == s.snapshot {
		return
	}
	if err := WriteCarrier(doc, payload); err != nil {
		s.log.WarnContext(ctx, "carrier not written", slog.Any("err", err))
		return
	}
	s.snapshot = payload
	s.stats.CarrierWrites++
	s.log.DebugContext(ctx, "carrier written", slog.Int("pairs", len(s.pairs)))
	if s.opts.OnPersist != nil {
		s.opts.OnPersist(doc, s.Pairs())
	}
}
