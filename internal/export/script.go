/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a project out of the editor: a printable
// translation script as PDF and the typeset pages as a CBZ archive.
package export

import (
	"context"
	"fmt"

	"fantranslator/internal/domain"
	"fantranslator/internal/storage"
)

// PageScript is the pairs of one page in reading order.
type PageScript struct {
	Number int // 1-based position in the project
	Page   domain.Page
	Pairs  []domain.TranslationPair
}

// CollectScript reads the pairs of every page of p in page order.
// A page that cannot be read fails the whole collection.
func CollectScript(ctx context.Context, p *storage.Project, load storage.PairLoader) ([]PageScript, error) {
	out := make([]PageScript, 0, len(p.Pages))
	for i, pg := range p.Pages {
		pairs, err := load(ctx, pg)
		if err != nil {
			return nil, fmt.Errorf("collect page %s: %w", pg.UID, err)
		}
		out = append(out, PageScript{Number: i + 1, Page: pg, Pairs: pairs})
	}
	return out, nil
}
