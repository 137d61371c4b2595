/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"strings"

	"fantranslator/internal/host"
	"fantranslator/internal/markup"
)

// handles are the live shapes of one pair. text may be nil when only the guide exists.
type handles struct {
	layer host.Node
	guide host.Shape
	text  host.Shape
}

// ShapeIndex maps pair uids to shape handles so a tick does not re-parse
// every shape's markup. Entries are trusted only while their handles are
// still present in their layer.
type ShapeIndex struct {
	entries map[string]handles
}

func NewShapeIndex() *ShapeIndex { return &ShapeIndex{entries: make(map[string]handles)} }

// Len reports the number of indexed uids.
func (ix *ShapeIndex) Len() int { return len(ix.entries) }

// Reset drops every entry.
func (ix *ShapeIndex) Reset() { ix.entries = make(map[string]handles) }

// Put records the handles of uid.
func (ix *ShapeIndex) Put(uid string, layer host.Node, guide, text host.Shape) {
	ix.entries[uid] = handles{layer: layer, guide: guide, text: text}
}

// Forget removes uid.
func (ix *ShapeIndex) Forget(uid string) { delete(ix.entries, uid) }

// Rebuild scans the text group once and indexes every guide and marked text shape found.
func (ix *ShapeIndex) Rebuild(doc host.Document) {
	ix.Reset()
	grp := findLayer(doc, TextGroupName, host.GroupLayer)
	if grp == nil {
		return
	}
	for _, layer := range grp.ChildNodes() {
		if layer.Type() != host.VectorLayer {
			continue
		}
		guides := map[string]host.Shape{}
		texts := map[string]host.Shape{}
		for _, shp := range layer.Shapes() {
			el, err := markup.Parse(shp.ToSVG())
			if err != nil {
				continue
			}
			if id := el.ID(); strings.HasPrefix(id, markup.GuidePrefix) {
				guides[strings.TrimPrefix(id, markup.GuidePrefix)] = shp
				continue
			}
			if uid, ok := el.MarkerUID(); ok {
				texts[uid] = shp
			}
		}
		for uid, g := range guides {
			if prev, ok := ix.entries[uid]; ok && prev.text != nil {
				continue
			}
			ix.entries[uid] = handles{layer: layer, guide: g, text: texts[uid]}
		}
	}
}

// lookup returns the indexed handles of uid when they are still live.
func (ix *ShapeIndex) lookup(grp host.Node, uid string) (handles, bool) {
	h, ok := ix.entries[uid]
	if !ok || !hasChild(grp, h.layer) {
		return handles{}, false
	}
	shapes := h.layer.Shapes()
	if !hasShape(shapes, h.guide) {
		return handles{}, false
	}
	if h.text != nil && !hasShape(shapes, h.text) {
		return handles{}, false
	}
	return h, true
}

func hasChild(parent, child host.Node) bool {
	for _, c := range parent.ChildNodes() {
		if c == child {
			return true
		}
	}
	return false
}

func hasShape(shapes []host.Shape, s host.Shape) bool {
	for _, x := range shapes {
		if x == s {
			return true
		}
	}
	return false
}
