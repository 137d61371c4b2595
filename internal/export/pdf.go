/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// PDFOptions controls the script layout.
//
// The Go fonts are embedded by default. They cover Latin, Greek and
// Cyrillic only; pass FontFile to print CJK source text.
type PDFOptions struct {
	Title       string
	FontFile    string // optional TTF used for all text
	SkipEmpty   bool   // leave out pages without pairs
	SourceLabel string
	TransLabel  string
}

const scriptFont = "script"

// WriteScriptPDF writes pages as an A4 translation script to outPath.
func WriteScriptPDF(pages []PageScript, outPath string, opt PDFOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if err := loadFonts(pdf, opt.FontFile); err != nil {
		return err
	}
	srcLabel := nonEmpty(opt.SourceLabel, "Source")
	tranLabel := nonEmpty(opt.TransLabel, "Translation")
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("fantranslator", true)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(scriptFont, "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if opt.Title != "" {
		pdf.SetFont(scriptFont, "B", 18)
		pdf.MultiCell(0, 10, opt.Title, "", "L", false)
		pdf.Ln(4)
	}
	for _, ps := range pages {
		if opt.SkipEmpty && len(ps.Pairs) == 0 {
			continue
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(scriptFont, "B", 14)
		heading := fmt.Sprintf("Page %d: %s", ps.Number, ps.Page.UID)
		if ps.Page.SourceFilename != "" {
			heading += " (" + ps.Page.SourceFilename + ")"
		}
		pdf.MultiCell(0, 8, heading, "B", "L", false)
		pdf.Ln(2)
		if len(ps.Pairs) == 0 {
			pdf.SetFont(scriptFont, "", 10)
			pdf.SetTextColor(128, 128, 128)
			pdf.MultiCell(0, 6, "No text regions.", "", "L", false)
			pdf.Ln(4)
			continue
		}
		for i, p := range ps.Pairs {
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont(scriptFont, "B", 10)
			pdf.CellFormat(10, 6, fmt.Sprintf("%d.", i+1), "", 0, "L", false, 0, "")
			pdf.SetFont(scriptFont, "", 8)
			pdf.SetTextColor(110, 110, 110)
			pdf.CellFormat(0, 6, fmt.Sprintf("%s %dpt", p.Font, p.Size), "", 1, "R", false, 0, "")
			row(pdf, srcLabel, p.Source)
			row(pdf, tranLabel, p.Translated)
			pdf.Ln(3)
		}
		pdf.Ln(3)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func row(pdf *gofpdf.Fpdf, label, text string) {
	pdf.SetTextColor(90, 90, 90)
	pdf.SetFont(scriptFont, "", 9)
	pdf.CellFormat(28, 6, label, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(scriptFont, "", 11)
	if strings.TrimSpace(text) == "" {
		text = "-"
	}
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func loadFonts(pdf *gofpdf.Fpdf, fontFile string) error {
	if fontFile == "" {
		pdf.AddUTF8FontFromBytes(scriptFont, "", goregular.TTF)
		pdf.AddUTF8FontFromBytes(scriptFont, "B", gobold.TTF)
		return pdf.Error()
	}
	b, err := os.ReadFile(fontFile)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	pdf.AddUTF8FontFromBytes(scriptFont, "", b)
	pdf.AddUTF8FontFromBytes(scriptFont, "B", b)
	return pdf.Error()
}

func nonEmpty(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
