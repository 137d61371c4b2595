/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"fantranslator/internal/host"
	"fantranslator/internal/markup"
)

// FindPairShapes locates the guide and text shape of uid inside the text group,
// which is created when missing. It returns all three values only when both
// shapes sit in the same vector layer, and all nil otherwise.
func FindPairShapes(doc host.Document, uid string) (layer host.Node, guide, text host.Shape) {
	l, g, t := scanPairShapes(doc, uid)
	if g == nil || t == nil {
		return nil, nil, nil
	}
	return l, g, t
}

// scanPairShapes is the linear markup scan behind FindPairShapes. A layer
// holding both shapes wins; otherwise the first layer holding the guide is
// returned with a nil text shape.
func scanPairShapes(doc host.Document, uid string) (host.Node, host.Shape, host.Shape) {
	grp, err := TextGroup(doc)
	if err != nil {
		return nil, nil, nil
	}
	var (
		guideOnly  host.Node
		guideShape host.Shape
	)
	guideID := markup.GuideID(uid)
	for _, layer := range grp.ChildNodes() {
		if layer.Type() != host.VectorLayer {
			continue
		}
		var g, t host.Shape
		for _, shp := range layer.Shapes() {
			el, err := markup.Parse(shp.ToSVG())
			if err != nil {
				continue
			}
			if g == nil && el.ID() == guideID {
				g = shp
			}
			if t == nil && el.HasMarker(uid) {
				t = shp
			}
			if g != nil && t != nil {
				return layer, g, t
			}
		}
		if g != nil && guideOnly == nil {
			guideOnly, guideShape = layer, g
		}
	}
	return guideOnly, guideShape, nil
}
