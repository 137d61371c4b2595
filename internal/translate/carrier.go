/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fantranslator/internal/domain"
	"fantranslator/internal/host"
	"fantranslator/internal/markup"
)

// ErrNoCarrier is returned when a page has no metadata carrier shape.
var ErrNoCarrier = errors.New("page has no metadata carrier")

// EncodePairs is the canonical serialization of a pair list. Equal lists
// always encode to equal strings.
func EncodePairs(pairs []domain.TranslationPair) (string, error) {
	b, err := json.Marshal(domain.ClonePairs(pairs))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// storedPair accepts the field name older pages used for the size.
type storedPair struct {
	domain.TranslationPair
	TextSize int `json:"text_size"`
}

// DecodePairs parses a carrier payload.
func DecodePairs(payload string) ([]domain.TranslationPair, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrNoCarrier)
	}
	var raw []storedPair
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TranslationPair, 0, len(raw))
	for _, r := range raw {
		p := r.TranslationPair
		if p.Size == 0 && r.TextSize > 0 {
			p.Size = r.TextSize
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadCarrier returns the payload of the page's carrier shape without
// creating the metadata layer.
func ReadCarrier(doc host.Document) (string, error) {
	layer := findLayer(doc, MetadataLayerName, host.VectorLayer)
	if layer == nil {
		return "", ErrNoCarrier
	}
	shapes := layer.Shapes()
	if len(shapes) == 0 {
		return "", ErrNoCarrier
	}
	el, err := markup.Parse(shapes[0].ToSVG())
	if err != nil {
		return "", err
	}
	payload, ok := el.CarrierPayload()
	if !ok {
		return "", ErrNoCarrier
	}
	return payload, nil
}

// LoadPairs reads and decodes the page's pairs.
func LoadPairs(doc host.Document) ([]domain.TranslationPair, error) {
	payload, err := ReadCarrier(doc)
	if err != nil {
		return nil, err
	}
	return DecodePairs(payload)
}

// WriteCarrier replaces every shape in the metadata layer with one fresh
// carrier holding payload.
func WriteCarrier(doc host.Document, payload string) error {
	layer, err := MetadataLayer(doc)
	if err != nil {
		return err
	}
	for _, s := range layer.Shapes() {
		s.Remove()
	}
	if _, err := layer.AddShapesFromSVG(markup.Carrier(payload)); err != nil {
		return fmt.Errorf("write carrier: %w", err)
	}
	return nil
}
