/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"fantranslator/internal/domain"
)

const (
	ProjectFileName = "project.json"
	PagesDirName    = "pages"
	ThumbsDirName   = "thumbs"

	// DefaultThumbSize is the longest thumbnail side in pixels.
	DefaultThumbSize = 256
)

var (
	// ErrMalformedProject is returned by Load for files that are not a valid project.
	ErrMalformedProject = errors.New("malformed project file")
	// ErrNotPermutation is returned by Reorder when the new list is not a permutation of the pages.
	ErrNotPermutation = errors.New("page list is not a permutation of the project pages")
)

//go:embed project.schema.json
var projectSchema []byte

// Project is an ordered list of pages below one root folder.
// Root holds project.json plus the pages/ and thumbs/ folders.
type Project struct {
	Title string
	Root  string
	Pages []domain.Page

	// ThumbSize overrides DefaultThumbSize when positive. Not persisted.
	ThumbSize int
}

// projectFile is the on-disk shape of project.json.
type projectFile struct {
	Title    string        `json:"title"`
	RootPath string        `json:"root_path"`
	Pages    []domain.Page `json:"pages"`
}

// NewProject scaffolds root with its page and thumbnail folders.
// Nothing is written until Save.
func NewProject(root string) (*Project, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	if err := scaffold(abs); err != nil {
		return nil, err
	}
	return &Project{Root: abs, Pages: []domain.Page{}}, nil
}

func scaffold(root string) error {
	for _, d := range []string{root, filepath.Join(root, PagesDirName), filepath.Join(root, ThumbsDirName)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Path is the location of project.json.
func (p *Project) Path() string { return filepath.Join(p.Root, ProjectFileName) }

// UIDs lists page uids in page order.
func (p *Project) UIDs() []string {
	out := make([]string, len(p.Pages))
	for i, pg := range p.Pages {
		out[i] = pg.UID
	}
	return out
}

// ThumbPath is where the thumbnail of the page with uid lives.
func (p *Project) ThumbPath(uid string) string {
	return filepath.Join(p.Root, ThumbsDirName, uid+".jpg")
}

// Thumbs lists thumbnail paths in page order.
func (p *Project) Thumbs() []string {
	out := make([]string, len(p.Pages))
	for i, pg := range p.Pages {
		out[i] = p.ThumbPath(pg.UID)
	}
	return out
}

// PageIndex returns the index of the page whose artifact is path, or -1.
func (p *Project) PageIndex(path string) int {
	want := filepath.Clean(path)
	if abs, err := filepath.Abs(want); err == nil {
		want = abs
	}
	for i, pg := range p.Pages {
		if filepath.Clean(pg.ArtifactPath) == want {
			return i
		}
	}
	return -1
}

// Save writes project.json with a temp file, fsync and rename.
// It always overwrites.
func (p *Project) Save() error {
	if p == nil || p.Root == "" {
		return errors.New("invalid project: missing root")
	}
	pf := projectFile{Title: p.Title, RootPath: ".", Pages: make([]domain.Page, 0, len(p.Pages))}
	for _, pg := range p.Pages {
		rel, err := filepath.Rel(p.Root, pg.ArtifactPath)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", pg.ArtifactPath, err)
		}
		pg.ArtifactPath = filepath.ToSlash(rel)
		pf.Pages = append(pf.Pages, pg)
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	data = append(data, '\n')

	target := p.Path()
	temp := filepath.Join(p.Root, fmt.Sprintf(".%s.tmp-%d-%d", ProjectFileName, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp project: %w", err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace project: %w", err)
	}
	return nil
}

// Load reads a project.json. The stored root is resolved against the
// file's folder and artifact paths against that root.
func Load(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	if err := validate(b); err != nil {
		return nil, err
	}
	var pf projectFile
	if err := json.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	root := filepath.Clean(filepath.Join(dir, filepath.FromSlash(pf.RootPath)))
	if filepath.IsAbs(pf.RootPath) {
		root = filepath.Clean(pf.RootPath)
	}
	p := &Project{Title: pf.Title, Root: root, Pages: make([]domain.Page, 0, len(pf.Pages))}
	for _, pg := range pf.Pages {
		pg.ArtifactPath = filepath.Join(root, filepath.FromSlash(pg.ArtifactPath))
		p.Pages = append(p.Pages, pg)
	}
	return p, nil
}

func validate(b []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(projectSchema), gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedProject, strings.Join(msgs, "; "))
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
