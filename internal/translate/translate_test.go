/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	"fantranslator/internal/host/memhost"
	"fantranslator/internal/markup"
	"fantranslator/internal/vector"
)

func newPage(t *testing.T) (*memhost.App, *memhost.Document) {
	t.Helper()
	app := memhost.NewApp()
	doc := app.New(800, 600)
	app.Activate(doc)
	return app, doc
}

func TestCarrierRoundTrip(t *testing.T) {
	_, doc := newPage(t)
	pairs := []domain.TranslationPair{
		{UID: "a", Source: "おはよう", Translated: "Good <morning> & \"hi\"", Font: "Arial", Size: 24},
		{UID: "b", Source: "", Translated: "Line1\nLine2", Font: "Wild Words", Size: 31},
	}
	payload, err := EncodePairs(pairs)
	require.NoError(t, err)
	require.NoError(t, WriteCarrier(doc, payload))
	require.NoError(t, WriteCarrier(doc, payload))

	meta := findLayer(doc, MetadataLayerName, host.VectorLayer)
	require.NotNil(t, meta)
	assert.Len(t, meta.Shapes(), 1, "carrier replacement leaves exactly one shape")

	got, err := LoadPairs(doc)
	require.NoError(t, err)
	assert.Equal(t, pairs, got)
}

func TestEncodePairsIsCanonical(t *testing.T) {
	a, err := EncodePairs(nil)
	require.NoError(t, err)
	b, err := EncodePairs([]domain.TranslationPair{})
	require.NoError(t, err)
	assert.Equal(t, "[]", a)
	assert.Equal(t, a, b)
}

func TestDecodePairsAcceptsLegacySizeField(t *testing.T) {
	got, err := DecodePairs(`[{"uid":"x","orig":"o","tran":"t","font":"Ariel","text_size":18}]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 18, got[0].Size)

	_, err = DecodePairs("{not json")
	assert.Error(t, err)
	_, err = DecodePairs("  ")
	assert.ErrorIs(t, err, ErrNoCarrier)
}

func TestReadCarrierWithoutLayerDoesNotCreateIt(t *testing.T) {
	_, doc := newPage(t)
	_, err := ReadCarrier(doc)
	assert.ErrorIs(t, err, ErrNoCarrier)
	assert.Empty(t, doc.TopLevelNodes())
}

func TestNextNumber(t *testing.T) {
	_, doc := newPage(t)
	grp, err := TextGroup(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, NextNumber(grp))
	for _, name := range []string{"Text 1", "Text 7", "Notes", "Text x"} {
		n, err := doc.CreateNode(name, host.VectorLayer)
		require.NoError(t, err)
		require.NoError(t, grp.AddChildNode(n))
	}
	assert.Equal(t, 8, NextNumber(grp))
}

func TestFindPairShapes(t *testing.T) {
	app, doc := newPage(t)
	s := NewSynchronizer(app, Options{})

	// lookup creates the text group on first use
	layer, guide, text := FindPairShapes(doc, "missing")
	assert.Nil(t, layer)
	assert.Nil(t, guide)
	assert.Nil(t, text)
	require.NotNil(t, findLayer(doc, TextGroupName, host.GroupLayer))

	p, err := s.AddText(ctx(), "", 0)
	require.NoError(t, err)
	layer, guide, text = FindPairShapes(doc, p.UID)
	require.NotNil(t, layer)
	require.NotNil(t, guide)
	require.NotNil(t, text)
	assert.Equal(t, "Text 1", layer.Name())

	gel, err := markup.Parse(guide.ToSVG())
	require.NoError(t, err)
	assert.Equal(t, markup.GuideID(p.UID), gel.ID())
	tel, err := markup.Parse(text.ToSVG())
	require.NoError(t, err)
	assert.True(t, tel.HasMarker(p.UID))

	// a guide without its text shape is not a match
	text.Remove()
	layer, guide, text = FindPairShapes(doc, p.UID)
	assert.Nil(t, layer)
	assert.Nil(t, guide)
	assert.Nil(t, text)
}

func TestShapeIndexRebuildAndStaleHandles(t *testing.T) {
	app, doc := newPage(t)
	s := NewSynchronizer(app, Options{})
	p, err := s.AddText(ctx(), "", 0)
	require.NoError(t, err)

	ix := NewShapeIndex()
	ix.Rebuild(doc)
	require.Equal(t, 1, ix.Len())
	grp, _ := TextGroup(doc)
	h, ok := ix.lookup(grp, p.UID)
	require.True(t, ok)
	require.NotNil(t, h.text)

	h.text.Remove()
	_, ok = ix.lookup(grp, p.UID)
	assert.False(t, ok, "removed handles must not be trusted")
}

func TestAddTextUsesMaskSelection(t *testing.T) {
	app, doc := newPage(t)
	s := NewSynchronizer(app, Options{})

	mask, err := s.AddMask(ctx())
	require.NoError(t, err)
	assert.Equal(t, "Mask 1", mask.Name())
	mask2, err := s.AddMask(ctx())
	require.NoError(t, err)
	assert.Equal(t, "Mask 2", mask2.Name())

	doc.SetActiveNode(mask)
	doc.SelectRect(vector.R(300, 200, 150, 90))
	p, err := s.AddText(ctx(), "Anime Ace", 30)
	require.NoError(t, err)
	assert.Equal(t, "Anime Ace", p.Font)
	assert.Equal(t, 30, p.Size)

	_, guide, _ := FindPairShapes(doc, p.UID)
	require.NotNil(t, guide)
	el, err := markup.Parse(guide.ToSVG())
	require.NoError(t, err)
	assert.Equal(t, vector.R(300, 200, 150, 90), el.GuideGeometry())

	// outside the mask group the default placement applies
	doc.SetActiveNode(nil)
	q, err := s.AddText(ctx(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFont, q.Font)
	assert.Equal(t, domain.DefaultSize, q.Size)
	layer, guide, _ := FindPairShapes(doc, q.UID)
	require.NotNil(t, guide)
	assert.Equal(t, "Text 2", layer.Name())
	el, err = markup.Parse(guide.ToSVG())
	require.NoError(t, err)
	assert.Equal(t, DefaultPlacement, el.GuideGeometry())
}

func TestEditsRequireActiveDocumentAndKnownPair(t *testing.T) {
	app := memhost.NewApp()
	s := NewSynchronizer(app, Options{})
	_, err := s.AddText(ctx(), "", 0)
	assert.ErrorIs(t, err, domain.ErrNoActiveDocument)
	_, err = s.AddMask(ctx())
	assert.ErrorIs(t, err, domain.ErrNoActiveDocument)

	assert.ErrorIs(t, s.SetTranslation("nope", "x"), domain.ErrUnknownPair)
	assert.ErrorIs(t, s.SetSource("nope", "x"), domain.ErrUnknownPair)
	assert.ErrorIs(t, s.SetStyle("nope", "F", 1), domain.ErrUnknownPair)
}

func TestSelectPairActivatesLayerAndGuide(t *testing.T) {
	app, doc := newPage(t)
	s := NewSynchronizer(app, Options{})
	p, err := s.AddText(ctx(), "", 0)
	require.NoError(t, err)

	require.NoError(t, s.SelectPair(ctx(), p.UID))
	layer, guide, _ := FindPairShapes(doc, p.UID)
	assert.Equal(t, layer, doc.ActiveNode())
	sel := doc.SelectedShapes()
	require.Len(t, sel, 1)
	assert.Equal(t, guide, host.Shape(sel[0]))

	assert.ErrorIs(t, s.SelectPair(ctx(), "unknown"), domain.ErrUnknownPair)
}

func TestSetStyleKeepsCurrentOnZeroValues(t *testing.T) {
	app, _ := newPage(t)
	s := NewSynchronizer(app, Options{DefaultFont: "Go", DefaultSize: 20})
	p, err := s.AddText(ctx(), "", 0)
	require.NoError(t, err)
	require.NoError(t, s.SetStyle(p.UID, "", 0))
	require.NoError(t, s.SetStyle(p.UID, "", 33))
	got := s.Pairs()[0]
	assert.Equal(t, "Go", got.Font)
	assert.Equal(t, 33, got.Size)

	// Pairs returns a copy
	got.Font = "changed"
	assert.Equal(t, "Go", s.Pairs()[0].Font)
}
