// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

// Package export renders a story and its units into downloadable
// documents (JSON, HTML, plain text, PDF) and builds the prompt used
// for AI narrative generation.
package export

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

// Document is a self-contained snapshot of a story prepared for export.
// It carries everything the renderers need so they stay free of storage
// and service dependencies.
type Document struct {
	Title           string
	SettingAndStyle string
	MainChallenge   string
	Units           []*unit.Unit
}

type unitJSON struct {
	UnitType string          `json:"unit_type"`
	Name     string          `json:"name"`
	Features json.RawMessage `json:"features"`
}

type documentJSON struct {
	Name            string     `json:"name"`
	SettingAndStyle string     `json:"setting_and_style"`
	MainChallenge   string     `json:"main_challenge"`
	Units           []unitJSON `json:"units"`
}

// JSON serializes the document, keeping each unit's features in the
// field order its kind's schema defines.
func JSON(doc *Document) ([]byte, error) {
	out := documentJSON{
		Name:            doc.Title,
		SettingAndStyle: doc.SettingAndStyle,
		MainChallenge:   doc.MainChallenge,
		Units:           make([]unitJSON, 0, len(doc.Units)),
	}
	for _, u := range doc.Units {
		features, err := orderedFeatureJSON(u)
		if err != nil {
			return nil, fmt.Errorf("serialize unit %q: %w", u.Name, err)
		}
		out.Units = append(out.Units, unitJSON{
			UnitType: string(u.Kind),
			Name:     u.Name,
			Features: features,
		})
	}
	return json.MarshalIndent(out, "", "    ")
}

// HTML renders the document as a standalone HTML fragment.
func HTML(doc *Document) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(doc.Title))
	fmt.Fprintf(&b, "<h2>Setting and Style</h2><p>%s</p>", html.EscapeString(doc.SettingAndStyle))
	fmt.Fprintf(&b, "<h2>Main Challenge</h2><p>%s</p>", html.EscapeString(doc.MainChallenge))
	for _, u := range doc.Units {
		fmt.Fprintf(&b, "<h3>%s: %s</h3>", html.EscapeString(string(u.Kind)), html.EscapeString(u.Name))
		b.WriteString("<ul>")
		for _, field := range orderedFields(u) {
			fmt.Fprintf(&b, "<li><strong>%s:</strong> %s</li>",
				html.EscapeString(field.name), html.EscapeString(field.display))
		}
		b.WriteString("</ul>")
	}
	return []byte(b.String()), nil
}

// Text renders a plain-text listing of the document's units.
func Text(doc *Document) []byte {
	var b strings.Builder
	writeUnitListing(&b, doc.Units)
	return []byte(b.String())
}

// NarrativePrompt builds the instruction handed to the text generator
// when the user asks for a full prose rendition of the story.
func NarrativePrompt(doc *Document) string {
	var b strings.Builder
	b.WriteString("Write a full story based on the following details:\n\n")
	fmt.Fprintf(&b, "Setting and Style:\n%s\n\n", doc.SettingAndStyle)
	fmt.Fprintf(&b, "Main Challenge:\n%s\n\n", doc.MainChallenge)
	b.WriteString("Units:\n")
	writeUnitListing(&b, doc.Units)
	return b.String()
}

func writeUnitListing(b *strings.Builder, units []*unit.Unit) {
	for _, u := range units {
		fmt.Fprintf(b, "%s: %s\n", u.Kind, u.Name)
		for _, field := range orderedFields(u) {
			fmt.Fprintf(b, "  %s: %s\n", field.name, field.display)
		}
		b.WriteString("\n")
	}
}

type renderedField struct {
	name    string
	display string
}

// orderedFields lists a unit's features in schema order. Fields the
// unit never received still render with their zero value so exports of
// the same kind always line up.
func orderedFields(u *unit.Unit) []renderedField {
	schema, ok := unit.SchemaFor(u.Kind)
	if !ok {
		return nil
	}
	fields := make([]renderedField, 0, len(schema))
	for _, field := range schema {
		fields = append(fields, renderedField{
			name:    field.Name,
			display: u.Features[field.Name].Display(),
		})
	}
	return fields
}

func orderedFeatureJSON(u *unit.Unit) (json.RawMessage, error) {
	schema, ok := unit.SchemaFor(u.Kind)
	if !ok {
		return json.Marshal(u.Features)
	}

	var b strings.Builder
	b.WriteString("{")
	for i, field := range schema {
		value, err := json.Marshal(u.Features[field.Name])
		if err != nil {
			return nil, err
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteString(",")
		}
		b.Write(key)
		b.WriteString(":")
		b.Write(value)
	}
	b.WriteString("}")
	return json.RawMessage(b.String()), nil
}
