// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/export"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

func groupingUnit() *unit.Unit {
	return &unit.Unit{
		ID:      "unit-1",
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			"name":                            unit.StringValue("Ferry Crew"),
			"Who is part of the group?":       unit.ListValue("Bob", "Eve"),
			"Reason for solidarity":           unit.StringValue("Shared shifts on the night ferry"),
			"Where did the group first meet?": unit.ListValue("The Old Tavern"),
		},
	}
}

func testDocument() *export.Document {
	return &export.Document{
		Title:           "Harbor Lights",
		SettingAndStyle: "A fog-bound port town.",
		MainChallenge:   "Find out who sank the ferry.",
		Units:           []*unit.Unit{groupingUnit()},
	}
}

/*
TestText renders the unit listing with two-space field indentation and a
blank line after each unit.
*/
func TestText(t *testing.T) {
	got := string(export.Text(testDocument()))

	want := "Grouping: Ferry Crew\n" +
		"  name: Ferry Crew\n" +
		"  Who is part of the group?: Bob, Eve\n" +
		"  Reason for solidarity: Shared shifts on the night ferry\n" +
		"  Where did the group first meet?: The Old Tavern\n" +
		"\n"
	assert.Equal(t, want, got)
}

/*
TestNarrativePrompt embeds setting, challenge and the unit listing under
the fixed instruction header.
*/
func TestNarrativePrompt(t *testing.T) {
	got := export.NarrativePrompt(testDocument())

	assert.True(t, strings.HasPrefix(got, "Write a full story based on the following details:\n\n"))
	assert.Contains(t, got, "Setting and Style:\nA fog-bound port town.\n\n")
	assert.Contains(t, got, "Main Challenge:\nFind out who sank the ferry.\n\n")
	assert.Contains(t, got, "Units:\nGrouping: Ferry Crew\n")
}

/*
TestJSON produces the wire shape with units keyed by unit_type and
features kept in schema field order.
*/
func TestJSON(t *testing.T) {
	raw, err := export.JSON(testDocument())
	require.NoError(t, err)

	var decoded struct {
		Name            string `json:"name"`
		SettingAndStyle string `json:"setting_and_style"`
		MainChallenge   string `json:"main_challenge"`
		Units           []struct {
			UnitType string                     `json:"unit_type"`
			Name     string                     `json:"name"`
			Features map[string]json.RawMessage `json:"features"`
		} `json:"units"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "Harbor Lights", decoded.Name)
	assert.Equal(t, "A fog-bound port town.", decoded.SettingAndStyle)
	assert.Equal(t, "Find out who sank the ferry.", decoded.MainChallenge)
	require.Len(t, decoded.Units, 1)
	assert.Equal(t, "Grouping", decoded.Units[0].UnitType)
	assert.Equal(t, "Ferry Crew", decoded.Units[0].Name)
	assert.JSONEq(t, `["Bob", "Eve"]`, string(decoded.Units[0].Features["Who is part of the group?"]))

	// Feature keys appear in schema order, not map order.
	text := string(raw)
	nameAt := strings.Index(text, `"name": "Ferry Crew"`)
	membersAt := strings.Index(text, `"Who is part of the group?"`)
	reasonAt := strings.Index(text, `"Reason for solidarity"`)
	metAt := strings.Index(text, `"Where did the group first meet?"`)
	assert.True(t, nameAt < membersAt && membersAt < reasonAt && reasonAt < metAt)
}

/*
TestHTML escapes user-supplied text in every rendered element.
*/
func TestHTML(t *testing.T) {
	doc := testDocument()
	doc.Title = "Harbor <Lights>"
	u := doc.Units[0]
	u.Features["Reason for solidarity"] = unit.StringValue(`They said "us & them"`)

	raw, err := export.HTML(doc)
	require.NoError(t, err)
	got := string(raw)

	assert.Contains(t, got, "<h1>Harbor &lt;Lights&gt;</h1>")
	assert.Contains(t, got, "<h2>Setting and Style</h2><p>A fog-bound port town.</p>")
	assert.Contains(t, got, "<h3>Grouping: Ferry Crew</h3>")
	assert.Contains(t, got, "They said &#34;us &amp; them&#34;")
	assert.NotContains(t, got, `"us & them"`)
}

/*
TestPDF produces a valid PDF header for a populated document.
*/
func TestPDF(t *testing.T) {
	raw, err := export.PDF(testDocument())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF"))
}
