// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

/*
TestSchemaRegistry_AllKinds verifies every built-in kind resolves to a
schema whose first attribute is the mandatory name field.
*/
func TestSchemaRegistry_AllKinds(t *testing.T) {
	kinds := unit.AllKinds()
	require.Len(t, kinds, 9)

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			schema, ok := unit.SchemaFor(kind)
			require.True(t, ok)
			require.NotEmpty(t, schema)

			assert.Equal(t, unit.FieldName, schema[0].Name)
			assert.Equal(t, unit.TypeString, schema[0].Type)
			assert.True(t, kind.IsValid())
		})
	}
}

/*
TestSchemaFor_UnknownKind verifies unknown kinds report as such.
*/
func TestSchemaFor_UnknownKind(t *testing.T) {
	_, ok := unit.SchemaFor(unit.Kind("Spaceship"))
	assert.False(t, ok)
	assert.False(t, unit.Kind("Spaceship").IsValid())
}

/*
TestSchema_Has verifies attribute lookup returns the declared type.
*/
func TestSchema_Has(t *testing.T) {
	schema, ok := unit.SchemaFor(unit.KindCharacter)
	require.True(t, ok)

	fieldType, found := schema.Has("Is this a player character?")
	require.True(t, found)
	assert.Equal(t, unit.TypeBool, fieldType)

	_, found = schema.Has("Favorite color")
	assert.False(t, found)
}
