/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "errors"

// This file defines the core records shared by the project model and the
// translation engine. They are kept free of host and storage concerns.

// Page is one imported source image of a project. The artifact is the
// host-native document the translator works in.
type Page struct {
	UID            string `json:"uid"`
	SourceFilename string `json:"og_fn"`
	ArtifactPath   string `json:"kra_fn"` // absolute in memory, relative to the root on disk
}

// TranslationPair is one translatable text region of a page.
type TranslationPair struct {
	UID        string `json:"uid"`
	Source     string `json:"orig"`
	Translated string `json:"tran"`
	Font       string `json:"font"`
	Size       int    `json:"size"`
}

// Default styling for pairs created without an explicit font.
const (
	DefaultFont = "Arial"
	DefaultSize = 24
)

// Placeholder is the text a fresh region shows until it is translated.
const Placeholder = "Text"

// PairHit is one search result: a pair and the page it lives on.
type PairHit struct {
	PageUID string          `json:"page_uid"`
	Pair    TranslationPair `json:"pair"`
}

var (
	// ErrNoActiveDocument is returned by operations that need a document when the host has none open.
	ErrNoActiveDocument = errors.New("no active document")
	// ErrUnknownPair is returned when a pair uid is not part of the current page.
	ErrUnknownPair = errors.New("unknown translation pair")
)

// ClonePairs returns an independent copy of ps.
func ClonePairs(ps []TranslationPair) []TranslationPair {
	if ps == nil {
		return []TranslationPair{}
	}
	out := make([]TranslationPair, len(ps))
	copy(out, ps)
	return out
}
