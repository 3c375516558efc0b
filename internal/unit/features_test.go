// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

/*
TestDecodeFeatures_Coercions exercises the per-type coercion rules of the
schema-driven codec.
*/
func TestDecodeFeatures_Coercions(t *testing.T) {
	schema, ok := unit.SchemaFor(unit.KindPlace)
	require.True(t, ok)

	raw := map[string]interface{}{
		"name":                   "The Old Tavern",
		"Where is it?":           "  By the docks  ",
		"Is it an indoor space?": float64(1), // legacy stored form
		"Is it underground?":     false,
		"Size (0.0 to 1.0)":      0.4,
		"People present":         []interface{}{"Bob", " Eve ", ""},
		"Associated places":      "Pier Seven", // single name instead of a list
		"not in any schema":      "dropped silently",
	}

	features, fieldErrors := unit.DecodeFeatures(schema, raw)
	require.Empty(t, fieldErrors)

	assert.Equal(t, "The Old Tavern", features.Name())
	assert.Equal(t, "By the docks", features["Where is it?"].Str)
	assert.True(t, features["Is it an indoor space?"].Bool)
	assert.False(t, features["Is it underground?"].Bool)
	assert.Equal(t, 0.4, features["Size (0.0 to 1.0)"].Float)
	assert.Equal(t, []string{"Bob", "Eve"}, features["People present"].List)
	assert.Equal(t, []string{"Pier Seven"}, features["Associated places"].List)

	_, present := features["not in any schema"]
	assert.False(t, present)

	// Missing attributes decode to their zero values.
	assert.Equal(t, "", features["What does it look like?"].Str)
	assert.Empty(t, features["Groups present"].List)
}

/*
TestDecodeFeatures_CollectsErrors verifies that all coercion failures are
reported together instead of failing fast.
*/
func TestDecodeFeatures_CollectsErrors(t *testing.T) {
	schema, ok := unit.SchemaFor(unit.KindPlace)
	require.True(t, ok)

	raw := map[string]interface{}{
		"name":                   "Broken",
		"Is it an indoor space?": "maybe",
		"Size (0.0 to 1.0)":      "not a number",
		"People present":         []interface{}{1, 2},
	}

	_, fieldErrors := unit.DecodeFeatures(schema, raw)
	require.Len(t, fieldErrors, 3)

	fields := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"Is it an indoor space?",
		"Size (0.0 to 1.0)",
		"People present",
	}, fields)
}

/*
TestValue_MarshalJSON checks the plain JSON forms of tagged values.
*/
func TestValue_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value unit.Value
		want  string
	}{
		{"string", unit.StringValue("Bob"), `"Bob"`},
		{"bool", unit.BoolValue(true), `true`},
		{"int", unit.IntValue(7), `7`},
		{"float", unit.FloatValue(0.5), `0.5`},
		{"list", unit.ListValue("Bob", "Eve"), `["Bob","Eve"]`},
		{"empty_list", unit.ListValue(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

/*
TestValue_Display checks the human-readable rendering used in exports and
prompts.
*/
func TestValue_Display(t *testing.T) {
	assert.Equal(t, "Bob", unit.StringValue("Bob").Display())
	assert.Equal(t, "true", unit.BoolValue(true).Display())
	assert.Equal(t, "3", unit.IntValue(3).Display())
	assert.Equal(t, "0.25", unit.FloatValue(0.25).Display())
	assert.Equal(t, "Bob, Eve", unit.ListValue("Bob", "Eve").Display())
}

/*
TestFeatures_Clone verifies that cloned features never alias the original's
reference lists.
*/
func TestFeatures_Clone(t *testing.T) {
	original := unit.Features{
		"name":           unit.StringValue("Bob"),
		"People present": unit.ListValue("Eve"),
	}

	clone := original.Clone()
	clone["People present"].List[0] = "Mallory"

	assert.Equal(t, "Eve", original["People present"].List[0])
}
