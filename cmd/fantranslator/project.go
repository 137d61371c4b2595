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
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"fantranslator/internal/storage"
)

var initTitle string

var initCmd = &cobra.Command{
	Use:   "init <dir> [images...]",
	Short: "Create a translation project",
	Long: `Create a project in <dir> with pages/ and thumbs/ folders and import the
given images as pages in order. The title defaults to the folder name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInit,
}

var openCmd = &cobra.Command{
	Use:   "open <dir>",
	Short: "Print a project summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var addPageCmd = &cobra.Command{
	Use:   "add-page <dir> <images...>",
	Short: "Import images as new pages",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAddPage,
}

var movePageCmd = &cobra.Command{
	Use:   "move-page <dir> <from> <to>",
	Short: "Move a page to a new position",
	Long:  `Move page number <from> so that it becomes page number <to>. Pages are numbered from 1.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runMovePage,
}

func init() {
	initCmd.Flags().StringVar(&initTitle, "title", "", "Project title")
	rootCmd.AddCommand(initCmd, openCmd, addPageCmd, movePageCmd)
}

// progressPrinter reports each imported file on w.
func progressPrinter(w io.Writer) storage.ProgressFunc {
	return func(done, total int, file string) {
		fmt.Fprintf(w, "imported %d/%d %s\n", done, total, filepath.Base(file))
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, files := args[0], args[1:]
	title := initTitle
	if title == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		title = filepath.Base(abs)
	}
	s := newSession()
	defer s.Close(cmd.Context())

	p, err := s.Create(cmd.Context(), dir, title, files, progressPrinter(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("init %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q at %s with %d page(s)\n", p.Title, p.Root, len(p.Pages))
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close(cmd.Context())

	p, err := s.OpenProject(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project: %s\n", p.Title)
	fmt.Fprintf(out, "Root: %s\n", p.Root)
	fmt.Fprintf(out, "Pages: %d\n", len(p.Pages))
	for i, pg := range p.Pages {
		fmt.Fprintf(out, "%3d  %-20s %s\n", i+1, pg.UID, pg.SourceFilename)
	}
	return nil
}

func runAddPage(cmd *cobra.Command, args []string) error {
	s := newSession()
	defer s.Close(cmd.Context())

	if _, err := s.OpenProject(args[0]); err != nil {
		return err
	}
	added, err := s.AddPages(cmd.Context(), args[1:], progressPrinter(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d page(s), project now has %d\n", len(added), len(s.Project().Pages))
	return nil
}

func runMovePage(cmd *cobra.Command, args []string) error {
	from, err := pageNumber(args[1])
	if err != nil {
		return err
	}
	to, err := pageNumber(args[2])
	if err != nil {
		return err
	}
	s := newSession()
	defer s.Close(cmd.Context())

	if _, err := s.OpenProject(args[0]); err != nil {
		return err
	}
	if err := s.MovePage(from, to); err != nil {
		return err
	}
	for i, pg := range s.Project().Pages {
		fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, pg.UID)
	}
	return nil
}

// pageNumber parses a 1-based page number into an index.
func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	return n - 1, nil
}
