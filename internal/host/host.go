/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package host describes the editor capabilities the translator consumes.
// Implementations are not required to be safe for concurrent use; callers
// serialize all access on one goroutine.
package host

import (
	"image"

	"fantranslator/internal/vector"
)

// Node types understood by the translator.
const (
	GroupLayer  = "grouplayer"
	VectorLayer = "vectorlayer"
	PaintLayer  = "paintlayer"
)

// App is the running editor.
type App interface {
	// ActiveDocument returns the focused document or nil.
	ActiveDocument() Document
	// OpenDocument opens an image or native document from disk.
	OpenDocument(path string) (Document, error)
	// NativeExt is the file extension of the host's own format, with dot.
	NativeExt() string
}

// Document is one open page.
type Document interface {
	FileName() string
	Width() int
	Height() int
	TopLevelNodes() []Node
	RootNode() Node
	// CreateNode makes a detached node; attach it with AddChildNode.
	CreateNode(name, nodeType string) (Node, error)
	ActiveNode() Node
	SetActiveNode(Node)
	// Selection is the bounding box of the selected shapes or pixels; ok is false when nothing is selected.
	Selection() (vector.Rect, bool)
	SaveAs(path string) error
	Thumbnail(w, h int) (image.Image, error)
	Close() error
}

// Node is a layer or group in the document tree.
type Node interface {
	Name() string
	Type() string
	ChildNodes() []Node
	AddChildNode(child Node) error
	// Shapes lists vector shapes; non-vector nodes return nil.
	Shapes() []Shape
	// AddShapesFromSVG imports every element of an SVG document as a shape.
	AddShapesFromSVG(svg string) ([]Shape, error)
}

// Shape is a vector shape whose identity survives only through its markup.
type Shape interface {
	ToSVG() string
	Remove()
	Select()
}
