/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"fantranslator/internal/domain"
)

const labelRunes = 40

// pairLabel is the list text of the i-th pair: its translation, or its
// source in brackets while untranslated.
func pairLabel(i int, p domain.TranslationPair) string {
	text := strings.Join(strings.Fields(p.Translated), " ")
	if text == "" {
		if src := strings.Join(strings.Fields(p.Source), " "); src != "" {
			text = "[" + src + "]"
		} else {
			text = "(empty)"
		}
	}
	return fmt.Sprintf("%d. %s", i+1, truncate(text, labelRunes))
}

// pageLabel is the list text of the i-th page.
func pageLabel(i int, pg domain.Page) string {
	if pg.SourceFilename == "" || strings.TrimSuffix(pg.SourceFilename, filepath.Ext(pg.SourceFilename)) == pg.UID {
		return fmt.Sprintf("%d  %s", i+1, pg.UID)
	}
	return fmt.Sprintf("%d  %s (%s)", i+1, pg.UID, pg.SourceFilename)
}

// hitLabel is the list text of a search hit.
func hitLabel(h domain.PairHit) string {
	text := h.Pair.Translated
	if strings.TrimSpace(text) == "" {
		text = h.Pair.Source
	}
	return fmt.Sprintf("%s: %s", h.PageUID, truncate(strings.Join(strings.Fields(text), " "), labelRunes))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
