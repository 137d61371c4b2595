/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package memhost

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"fantranslator/internal/host"
)

const (
	fileFormat  = "ftdoc"
	fileVersion = 1
)

// ErrBadDocument is returned for .ftdoc files that cannot be decoded.
var ErrBadDocument = errors.New("malformed ftdoc file")

type docFile struct {
	Format  string     `json:"format"`
	Version int        `json:"version"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Nodes   []nodeFile `json:"nodes"`
}

type nodeFile struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Shapes   []string   `json:"shapes,omitempty"`
	PNG      []byte     `json:"png,omitempty"`
	Children []nodeFile `json:"children,omitempty"`
}

func encodeNode(n *Node) (nodeFile, error) {
	nf := nodeFile{Name: n.name, Type: n.typ}
	for _, s := range n.shapes {
		nf.Shapes = append(nf.Shapes, s.svg)
	}
	if n.pixels != nil {
		var buf bytes.Buffer
		if err := gg.NewContextForImage(n.pixels).EncodePNG(&buf); err != nil {
			return nf, fmt.Errorf("encode layer %q: %w", n.name, err)
		}
		nf.PNG = buf.Bytes()
	}
	for _, c := range n.children {
		cf, err := encodeNode(c)
		if err != nil {
			return nf, err
		}
		nf.Children = append(nf.Children, cf)
	}
	return nf, nil
}

func decodeNode(d *Document, nf nodeFile) (*Node, error) {
	switch nf.Type {
	case host.GroupLayer, host.VectorLayer, host.PaintLayer:
	default:
		return nil, fmt.Errorf("%w: node %q has type %q", ErrBadDocument, nf.Name, nf.Type)
	}
	n := &Node{name: nf.Name, typ: nf.Type, doc: d}
	for _, svg := range nf.Shapes {
		n.shapes = append(n.shapes, &Shape{node: n, svg: svg})
	}
	if len(nf.PNG) > 0 {
		img, _, err := image.Decode(bytes.NewReader(nf.PNG))
		if err != nil {
			return nil, fmt.Errorf("%w: layer %q pixels: %v", ErrBadDocument, nf.Name, err)
		}
		n.pixels = img
	}
	for _, cf := range nf.Children {
		c, err := decodeNode(d, cf)
		if err != nil {
			return nil, err
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n, nil
}

func writeFile(d *Document, path string) error {
	f := docFile{Format: fileFormat, Version: fileVersion, Width: d.width, Height: d.height}
	for _, c := range d.root.children {
		nf, err := encodeNode(c)
		if err != nil {
			return err
		}
		f.Nodes = append(f.Nodes, nf)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmpName, path)
}

func readFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	var f docFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if f.Format != fileFormat || f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrBadDocument, filepath.Base(path))
	}
	d := newDocument(f.Width, f.Height)
	for _, nf := range f.Nodes {
		n, err := decodeNode(d, nf)
		if err != nil {
			return nil, err
		}
		n.parent = d.root
		d.root.children = append(d.root.children, n)
	}
	d.path = path
	return d, nil
}
