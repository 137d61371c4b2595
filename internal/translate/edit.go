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
	"fmt"
	"log/slog"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	applog "fantranslator/internal/log"
	"fantranslator/internal/markup"
	"fantranslator/internal/vector"
)

// DefaultPlacement is where a new region goes when no mask selection applies.
var DefaultPlacement = vector.R(100, 100, 100, 50)

// activeDocument returns the host's active document with the pair list loaded for it.
func (s *Synchronizer) activeDocument(ctx context.Context) (host.Document, error) {
	doc := s.app.ActiveDocument()
	if doc == nil {
		return nil, domain.ErrNoActiveDocument
	}
	s.ensureLoaded(applog.ContextWithDocument(ctx, doc.FileName()), doc)
	return doc, nil
}

// AddText creates a new text region in its own vector layer and appends its
// pair. The region takes the selection's bounding box when the active node is
// inside the mask group, the default placement otherwise. Empty font or zero
// size use the configured defaults. The carrier is written on the next tick.
func (s *Synchronizer) AddText(ctx context.Context, font string, size int) (domain.TranslationPair, error) {
	doc, err := s.activeDocument(ctx)
	if err != nil {
		return domain.TranslationPair{}, err
	}
	grp, err := TextGroup(doc)
	if err != nil {
		return domain.TranslationPair{}, err
	}
	rect := s.placement(doc)

	layer, err := doc.CreateNode(fmt.Sprintf("Text %d", NextNumber(grp)), host.VectorLayer)
	if err != nil {
		return domain.TranslationPair{}, fmt.Errorf("create text layer: %w", err)
	}
	if err := grp.AddChildNode(layer); err != nil {
		return domain.TranslationPair{}, fmt.Errorf("attach text layer: %w", err)
	}

	p := domain.TranslationPair{UID: NewUID(), Font: font, Size: size}
	p.Font, p.Size = s.style(p)

	svg := markup.Document(doc.Width(), doc.Height(),
		markup.GuideRect(p.UID, rect),
		s.renderText(p.UID, domain.Placeholder, rect, p.Font, p.Size))
	shapes, err := layer.AddShapesFromSVG(svg)
	if err != nil {
		return domain.TranslationPair{}, fmt.Errorf("write region shapes: %w", err)
	}
	if len(shapes) == 2 {
		s.index.Put(p.UID, layer, shapes[0], shapes[1])
	}
	s.pairs = append(s.pairs, p)
	s.log.InfoContext(ctx, "text region added", slog.String("uid", p.UID), slog.String("layer", layer.Name()))
	return p, nil
}

func (s *Synchronizer) placement(doc host.Document) vector.Rect {
	masks := findLayer(doc, MaskGroupName, host.GroupLayer)
	active := doc.ActiveNode()
	if masks == nil || active == nil || active == masks || !contains(masks, active) {
		return DefaultPlacement
	}
	if r, ok := doc.Selection(); ok && !r.Empty() {
		return r
	}
	return DefaultPlacement
}

// AddMask appends a new paint layer "Mask N" to the mask group.
func (s *Synchronizer) AddMask(ctx context.Context) (host.Node, error) {
	doc, err := s.activeDocument(ctx)
	if err != nil {
		return nil, err
	}
	grp, err := MaskGroup(doc)
	if err != nil {
		return nil, err
	}
	node, err := doc.CreateNode(fmt.Sprintf("Mask %d", NextNumber(grp)), host.PaintLayer)
	if err != nil {
		return nil, fmt.Errorf("create mask layer: %w", err)
	}
	if err := grp.AddChildNode(node); err != nil {
		return nil, fmt.Errorf("attach mask layer: %w", err)
	}
	return node, nil
}

// SelectPair activates the layer of uid and selects its guide. A region whose
// shapes were deleted on the canvas is silently left alone.
func (s *Synchronizer) SelectPair(ctx context.Context, uid string) error {
	doc, err := s.activeDocument(ctx)
	if err != nil {
		return err
	}
	if s.find(uid) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPair, uid)
	}
	h, ok := s.shapesFor(doc, uid)
	if !ok {
		return nil
	}
	doc.SetActiveNode(h.layer)
	h.guide.Select()
	return nil
}

func (s *Synchronizer) find(uid string) int {
	for i, p := range s.pairs {
		if p.UID == uid {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) update(uid string, fn func(p *domain.TranslationPair)) error {
	i := s.find(uid)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPair, uid)
	}
	fn(&s.pairs[i])
	return nil
}

// SetTranslation replaces the translated text of uid.
func (s *Synchronizer) SetTranslation(uid, text string) error {
	return s.update(uid, func(p *domain.TranslationPair) { p.Translated = text })
}

// SetSource replaces the source text of uid.
func (s *Synchronizer) SetSource(uid, text string) error {
	return s.update(uid, func(p *domain.TranslationPair) { p.Source = text })
}

// SetStyle changes font and size of uid. Empty font or zero size keep the current value.
func (s *Synchronizer) SetStyle(uid, font string, size int) error {
	return s.update(uid, func(p *domain.TranslationPair) {
		if font != "" {
			p.Font = font
		}
		if size > 0 {
			p.Size = size
		}
	})
}

// Load makes sure the pair list belongs to the active document.
func (s *Synchronizer) Load(ctx context.Context) error {
	_, err := s.activeDocument(ctx)
	return err
}
