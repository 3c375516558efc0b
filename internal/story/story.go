// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

/*
Package story implements the story aggregate: the container that owns a
collection of units and the undefined-name ledger the reference resolver
maintains.

Story names are unique per owner; unit names are unique per story. The
ledger (UndefinedNames) is an ordered list of names that units reference
but no unit defines yet. It is mutated only through SaveUndefinedNames,
always as a single whole-list write.
*/
package story

import "time"

// Story is the aggregate root for a user's story.
type Story struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	SettingAndStyle string    `json:"setting_and_style"`
	MainChallenge   string    `json:"main_challenge"`
	UndefinedNames  []string  `json:"undefined_names"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateInput carries the fields for a new story. All three are required.
type CreateInput struct {
	Name            string `json:"name"`
	SettingAndStyle string `json:"setting_and_style"`
	MainChallenge   string `json:"main_challenge"`
}

// Field names for validation messages.
const (
	FieldName            = "name"
	FieldSettingAndStyle = "setting_and_style"
	FieldMainChallenge   = "main_challenge"
)
