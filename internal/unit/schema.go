// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

// FieldType is the primitive type of a single schema attribute.
type FieldType string

const (
	TypeString        FieldType = "string"
	TypeBool          FieldType = "bool"
	TypeInt           FieldType = "int"
	TypeFloat         FieldType = "float"
	TypeReferenceList FieldType = "reference_list"
)

// Field is one attribute of a unit schema.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Schema is the ordered attribute list for a unit kind. The first field is
// always FieldName with type [TypeString].
type Schema []Field

// FieldName is the mandatory name attribute present in every schema.
const FieldName = "name"

// SchemaFor returns the schema for the given kind. The second return value
// is false for unknown kinds.
func SchemaFor(kind Kind) (Schema, bool) {
	s, ok := schemaRegistry[kind]
	return s, ok
}

// Has reports whether the schema contains an attribute with the given name,
// and returns its type.
func (s Schema) Has(name string) (FieldType, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// withName prepends the mandatory name field to kind-specific attributes.
func withName(fields ...Field) Schema {
	return append(Schema{{Name: FieldName, Type: TypeString}}, fields...)
}

// schemaRegistry is the static kind registry, built once at package init.
// The attribute wording is product content surfaced directly in the editor
// forms, so it is deliberately phrased as questions.
var schemaRegistry = map[Kind]Schema{
	KindEventOrScene: withName(
		Field{"Which people are involved?", TypeReferenceList},
		Field{"Which groups are involved?", TypeReferenceList},
		Field{"Which beasts are involved?", TypeReferenceList},
		Field{"Which items are involved?", TypeReferenceList},
		Field{"Which secrets are involved?", TypeReferenceList},
		Field{"What motivations are involved?", TypeReferenceList},
		Field{"Where might this happen?", TypeReferenceList},
		Field{"Is this an investigation scene?", TypeBool},
		Field{"Is this a social interaction?", TypeBool},
		Field{"Is this a fight scene?", TypeBool},
		Field{"What happens?", TypeString},
		Field{"How do relationships change?", TypeString},
		Field{"What triggers this scene to happen?", TypeString},
		Field{"Is this scene a start scene?", TypeBool},
		Field{"If this scene is a start scene, who's start scene is it?", TypeReferenceList},
		Field{"How likely will this scene occur?", TypeFloat},
	),
	KindSecret: withName(
		Field{"What is the secret?", TypeString},
		Field{"Who knows of it?", TypeReferenceList},
		Field{"Which people are involved?", TypeReferenceList},
		Field{"Which groups are involved?", TypeReferenceList},
		Field{"Which items are involved?", TypeReferenceList},
		Field{"Excitement level", TypeFloat},
	),
	KindItem: withName(
		Field{"Who owns this?", TypeReferenceList},
		Field{"Worth", TypeFloat},
		Field{"What is it?", TypeString},
		Field{"Where is it?", TypeReferenceList},
	),
	KindBeast: withName(
		Field{"Which race is this beast?", TypeString},
		Field{"Where could it be?", TypeReferenceList},
		Field{"What does it look like?", TypeString},
		Field{"Aggressiveness", TypeFloat},
	),
	KindGrouping: withName(
		Field{"Who is part of the group?", TypeReferenceList},
		Field{"Reason for solidarity", TypeString},
		Field{"Where did the group first meet?", TypeReferenceList},
	),
	KindMotivation: withName(
		Field{"Who is motivated?", TypeReferenceList},
		Field{"What is the motivation for?", TypeString},
		Field{"By whom is the motivation?", TypeReferenceList},
		Field{"Is ambition the source of motivation?", TypeBool},
		Field{"Is determination the source of motivation?", TypeBool},
		Field{"Is duty the source of motivation?", TypeBool},
		Field{"Is fear the source of motivation?", TypeBool},
		Field{"Is greed the source of motivation?", TypeBool},
		Field{"Is love the source of motivation?", TypeBool},
		Field{"Is revenge the source of motivation?", TypeBool},
		Field{"Is survival the source of motivation?", TypeBool},
		Field{"Is reflection the source of motivation?", TypeBool},
	),
	KindPlace: withName(
		Field{"Where is it?", TypeString},
		Field{"Environmental conditions", TypeString},
		Field{"Associated places", TypeReferenceList},
		Field{"People present", TypeReferenceList},
		Field{"Groups present", TypeReferenceList},
		Field{"Beasts present", TypeReferenceList},
		Field{"Items present", TypeReferenceList},
		Field{"Secrets can be found here", TypeReferenceList},
		Field{"Size (0.0 to 1.0)", TypeFloat},
		Field{"What does it look like?", TypeString},
		Field{"Special history", TypeReferenceList},
		Field{"Upcoming events at this place", TypeString},
		Field{"Is it a space in nature?", TypeBool},
		Field{"Is it an urban space?", TypeBool},
		Field{"Is it an indoor space?", TypeBool},
		Field{"Is it underground?", TypeBool},
		Field{"Is it a cave?", TypeBool},
	),
	KindTransportation: withName(
		Field{"Connecting places", TypeReferenceList},
		Field{"Usage frequency", TypeFloat},
		Field{"For motor vehicles?", TypeBool},
		Field{"For non-motor vehicles?", TypeBool},
		Field{"For pedestrians?", TypeBool},
		Field{"Is it a street?", TypeBool},
		Field{"Is it a railway?", TypeBool},
		Field{"Is it a waterway?", TypeBool},
		Field{"Is it a tunnel?", TypeBool},
		Field{"Is it a bridge?", TypeBool},
	),
	KindCharacter: withName(
		Field{"Is this a player character?", TypeBool},
		Field{"Skills or talents", TypeString},
		Field{"Involved events or scenes", TypeReferenceList},
		Field{"Groups part of", TypeReferenceList},
		Field{"Plans involving this character", TypeReferenceList},
		Field{"Character's backstory", TypeString},
		Field{"Important people for this character", TypeReferenceList},
		Field{"Important items for this character", TypeReferenceList},
	),
}
