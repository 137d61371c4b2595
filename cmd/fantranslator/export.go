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

	"github.com/spf13/cobra"

	"fantranslator/internal/export"
	"fantranslator/internal/translate"
)

var (
	scriptFont      string
	scriptSkipEmpty bool
	cbzLeftToRight  bool
)

var exportScriptCmd = &cobra.Command{
	Use:   "export-script <dir> <out.pdf>",
	Short: "Write every pair of the project to a PDF script",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportScript,
}

var exportCBZCmd = &cobra.Command{
	Use:   "export-cbz <dir> <out.cbz>",
	Short: "Render all pages into a comic book archive",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportCBZ,
}

func init() {
	exportScriptCmd.Flags().StringVar(&scriptFont, "font-file", "", "TTF font for non-Latin text")
	exportScriptCmd.Flags().BoolVar(&scriptSkipEmpty, "skip-empty", false, "Leave out pages without pairs")
	exportCBZCmd.Flags().BoolVar(&cbzLeftToRight, "ltr", false, "Mark the archive as left-to-right")
	rootCmd.AddCommand(exportScriptCmd, exportCBZCmd)
}

func runExportScript(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := newSession()
	defer s.Close(ctx)

	p, err := s.OpenProject(args[0])
	if err != nil {
		return err
	}
	pages, err := export.CollectScript(ctx, p, translate.PageReader(s.App))
	if err != nil {
		return err
	}
	if err := export.WriteScriptPDF(pages, args[1], export.PDFOptions{
		Title:     p.Title,
		FontFile:  scriptFont,
		SkipEmpty: scriptSkipEmpty,
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
	return nil
}

func runExportCBZ(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := newSession()
	defer s.Close(ctx)

	p, err := s.OpenProject(args[0])
	if err != nil {
		return err
	}
	if err := export.WritePagesCBZ(ctx, s.App, p, args[1], export.CBZOptions{
		Series:      p.Title,
		RightToLeft: !cbzLeftToRight,
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
	return nil
}
