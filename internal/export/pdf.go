// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDF renders the document as an A4 PDF: centered title, the story
// framing as paragraphs, then one heading plus feature listing per unit.
func PDF(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetAutoPageBreak(true, 15)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, tr(fmt.Sprintf("Setting and Style: %s\n", doc.SettingAndStyle)), "", "", false)
	pdf.MultiCell(0, 10, tr(fmt.Sprintf("Main Challenge: %s\n", doc.MainChallenge)), "", "", false)

	for _, u := range doc.Units {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s: %s", u.Kind, u.Name)), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		for _, field := range orderedFields(u) {
			pdf.MultiCell(0, 10, tr(fmt.Sprintf("%s: %s", field.name, field.display)), "", "", false)
			pdf.Ln(1)
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
