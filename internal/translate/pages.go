/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"context"
	"errors"
	"fmt"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
)

// PageReader returns a function that opens a page artifact in app, reads
// its pairs and closes it again. A page that was never translated has no
// carrier and yields an empty list.
func PageReader(app host.App) func(ctx context.Context, pg domain.Page) ([]domain.TranslationPair, error) {
	return func(ctx context.Context, pg domain.Page) (pairs []domain.TranslationPair, err error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := app.OpenDocument(pg.ArtifactPath)
		if err != nil {
			return nil, fmt.Errorf("open page %s: %w", pg.UID, err)
		}
		defer func() {
			if cerr := doc.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}()
		pairs, err = LoadPairs(doc)
		if errors.Is(err, ErrNoCarrier) {
			return []domain.TranslationPair{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", pg.UID, err)
		}
		return pairs, nil
	}
}
