/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var reindexCmd = &cobra.Command{
	Use:   "reindex <dir>",
	Short: "Rebuild the project's search index from its pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindex,
}

var searchCmd = &cobra.Command{
	Use:   "search <dir> <query...>",
	Short: "Find pairs by source or translated text",
	Long: `Search the project's index. Every word must match the start of a word in
the source or the translation. Run reindex first when pages were edited
outside fantranslator.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of hits")
	rootCmd.AddCommand(reindexCmd, searchCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close(cmd.Context())

	if _, err := s.OpenProject(args[0]); err != nil {
		return err
	}
	n, err := s.Reindex(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d pair(s)\n", n)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close(cmd.Context())

	if _, err := s.OpenProject(args[0]); err != nil {
		return err
	}
	hits, err := s.Search(cmd.Context(), strings.Join(args[1:], " "), searchLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No matches")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(out, "%s\t%s\t%q\t%q\n", h.PageUID, h.Pair.UID, h.Pair.Source, h.Pair.Translated)
	}
	return nil
}
