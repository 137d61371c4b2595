/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fantranslator/internal/domain"
	"fantranslator/internal/session"
	"fantranslator/internal/vector"
)

var (
	addTranslation string
	addSource      string
	addFont        string
	addSize        int
	addRect        vector.Rect
)

var pairsCmd = &cobra.Command{
	Use:   "pairs <page.ftdoc>",
	Short: "List the translation pairs of a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPairs,
}

var addTextCmd = &cobra.Command{
	Use:   "add-text <page.ftdoc>",
	Short: "Add a text region to a page",
	Long: `Add a text region with its translation pair, run one synchronization
and save the page. With --w and --h the region covers the given rectangle,
otherwise it goes to the default placement.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddText,
}

var setTextCmd = &cobra.Command{
	Use:   "set-text <page.ftdoc> <uid> <translation>",
	Short: "Change the translation of a pair",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetText,
}

var syncCmd = &cobra.Command{
	Use:   "sync <page.ftdoc>",
	Short: "Re-render every region of a page from its pairs",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func init() {
	f := addTextCmd.Flags()
	f.StringVar(&addTranslation, "translation", "", "Translated text")
	f.StringVar(&addSource, "source", "", "Source text")
	f.StringVar(&addFont, "font", "", "Font family (default from config)")
	f.IntVar(&addSize, "size", 0, "Font size (default from config)")
	f.Float64Var(&addRect.X, "x", 0, "Region left edge")
	f.Float64Var(&addRect.Y, "y", 0, "Region top edge")
	f.Float64Var(&addRect.W, "w", 0, "Region width")
	f.Float64Var(&addRect.H, "h", 0, "Region height")
	rootCmd.AddCommand(pairsCmd, addTextCmd, setTextCmd, syncCmd)
}

// openPage starts a session on one page artifact. The watcher runs once so
// that a page inside a project keeps the project's search index current.
func openPage(ctx context.Context, path string) (*session.Session, error) {
	s := newSession()
	if _, err := s.OpenFile(ctx, path); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	s.Watch.Check(ctx)
	return s, nil
}

func printPairs(w io.Writer, pairs []domain.TranslationPair) {
	for i, p := range pairs {
		fmt.Fprintf(w, "%d\t%s\t%s %d\t%q\t%q\n", i+1, p.UID, p.Font, p.Size, p.Source, p.Translated)
	}
}

func runPairs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openPage(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	printPairs(cmd.OutOrStdout(), s.Sync.Pairs())
	return nil
}

func runAddText(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openPage(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if !addRect.Empty() {
		// A selection inside the mask group sets the region bounds.
		mask, err := s.Sync.AddMask(ctx)
		if err != nil {
			return err
		}
		doc := s.Page()
		doc.SetActiveNode(mask)
		doc.SelectRect(addRect)
		defer doc.ClearSelection()
	}
	p, err := s.Sync.AddText(ctx, addFont, addSize)
	if err != nil {
		return err
	}
	if err := s.Sync.SetSource(p.UID, addSource); err != nil {
		return err
	}
	if err := s.Sync.SetTranslation(p.UID, addTranslation); err != nil {
		return err
	}
	if err := s.SavePage(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.UID)
	return nil
}

func runSetText(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openPage(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.Sync.SetTranslation(args[1], args[2]); err != nil {
		return err
	}
	return s.SavePage(ctx)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openPage(ctx, args[0])
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.SavePage(ctx); err != nil {
		return err
	}
	st := s.Sync.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "pairs=%d rewrites=%d misses=%d\n", len(s.Sync.Pairs()), st.Rewrites, st.Misses)
	return nil
}
