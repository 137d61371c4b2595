/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package translate keeps translation pairs and their on-canvas text shapes in sync.
package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"fantranslator/internal/host"
)

// Fixed top-level layer names on every page document.
const (
	TextGroupName     = "ft_texts"
	MaskGroupName     = "ft_masks"
	MetadataLayerName = "ft_metadata"
)

// NewUID returns a fresh opaque pair id.
func NewUID() string { return uuid.NewString() }

// findLayer returns the top-level node with the given name and type, or nil.
func findLayer(doc host.Document, name, nodeType string) host.Node {
	for _, n := range doc.TopLevelNodes() {
		if n.Type() == nodeType && n.Name() == name {
			return n
		}
	}
	return nil
}

// findOrCreateLayer returns the named top-level node, creating it under the root if absent.
func findOrCreateLayer(doc host.Document, name, nodeType string) (host.Node, error) {
	if n := findLayer(doc, name, nodeType); n != nil {
		return n, nil
	}
	n, err := doc.CreateNode(name, nodeType)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	if err := doc.RootNode().AddChildNode(n); err != nil {
		return nil, fmt.Errorf("attach %s: %w", name, err)
	}
	return n, nil
}

// TextGroup returns the group holding one vector layer per text region.
func TextGroup(doc host.Document) (host.Node, error) {
	return findOrCreateLayer(doc, TextGroupName, host.GroupLayer)
}

// MaskGroup returns the group holding the mask paint layers.
func MaskGroup(doc host.Document) (host.Node, error) {
	return findOrCreateLayer(doc, MaskGroupName, host.GroupLayer)
}

// MetadataLayer returns the vector layer holding the carrier shape.
func MetadataLayer(doc host.Document) (host.Node, error) {
	return findOrCreateLayer(doc, MetadataLayerName, host.VectorLayer)
}

// NextNumber is one more than the largest trailing number in the children's
// names ("Text 3" -> 3). Names without a number are ignored.
func NextNumber(group host.Node) int {
	highest := 0
	for _, c := range group.ChildNodes() {
		name := c.Name()
		tail := name[strings.LastIndex(name, " ")+1:]
		if n, err := strconv.Atoi(tail); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// contains reports whether target is node or one of its descendants.
func contains(node, target host.Node) bool {
	if node == nil || target == nil {
		return false
	}
	if node == target {
		return true
	}
	for _, c := range node.ChildNodes() {
		if contains(c, target) {
			return true
		}
	}
	return false
}
