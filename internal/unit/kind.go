// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

/*
Package unit implements the typed story entities ("units") and the
reference-resolution core that keeps cross-unit name references consistent.

A unit is a kind-tagged bag of features. Features are schema-driven: every
kind carries a fixed, ordered attribute schema, and reference-list features
hold names of other units in the same story. Names may be mentioned before
the unit they denote exists; the story tracks these as undefined names until
a unit with that name is created.

Architecture:

  - Kind / Schema: static registry of the built-in entity kinds.
  - Features: tagged values with an explicit codec at the storage boundary.
  - Repository: persistence contract implemented by the postgres store.
  - Resolver: reconciles undefined names and propagates renames.
  - Service: orchestration, duplicate guard, copy/template and AI prefill.
*/
package unit

// Kind discriminates the entity kinds a unit can have. Each kind selects a
// fixed feature [Schema].
type Kind string

// The built-in unit kinds.
const (
	KindCharacter      Kind = "Character"
	KindPlace          Kind = "Place"
	KindItem           Kind = "Item"
	KindBeast          Kind = "Beast"
	KindGrouping       Kind = "Grouping"
	KindMotivation     Kind = "Motivation"
	KindEventOrScene   Kind = "EventOrScene"
	KindSecret         Kind = "Secret"
	KindTransportation Kind = "TransportationInfrastructure"
)

// AllKinds lists every built-in kind in presentation order.
func AllKinds() []Kind {
	return []Kind{
		KindEventOrScene,
		KindSecret,
		KindItem,
		KindBeast,
		KindGrouping,
		KindMotivation,
		KindPlace,
		KindTransportation,
		KindCharacter,
	}
}

// IsValid reports whether k is one of the built-in kinds.
func (k Kind) IsValid() bool {
	_, ok := schemaRegistry[k]
	return ok
}

func (k Kind) String() string { return string(k) }
