// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"context"
	"time"
)

// Unit is a typed story entity. Its Name is unique within the owning story
// and doubles as the handle other units use to reference it.
type Unit struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Features  Features  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryInfo is the story snapshot the unit domain needs: ownership for
// access checks, prose fields for generative prompts, and the undefined-name
// ledger for reconciliation. It is provided by the story domain through the
// [StoryDirectory] interface to keep the dependency pointing one way.
type StoryInfo struct {
	ID              string
	OwnerID         string
	Name            string
	SettingAndStyle string
	MainChallenge   string
	UndefinedNames  []string
}

// StoryDirectory is the story-side collaborator consumed by the unit domain.
type StoryDirectory interface {
	// GetStoryInfo resolves a story snapshot, or NotFound.
	GetStoryInfo(ctx context.Context, storyID string) (*StoryInfo, error)
	// SaveUndefinedNames overwrites the story's undefined-name ledger.
	SaveUndefinedNames(ctx context.Context, storyID string, names []string) error
}

// Labeler applies the automatic labels attached to every created unit.
type Labeler interface {
	ApplyAutoLabels(ctx context.Context, unitID string, names []string) error
}

// TextGenerator is the generative-text collaborator used for feature
// prefill. Implementations must be side-effect free from the caller's
// perspective; a failed call leaves no state behind.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Field names used in validation messages.
const (
	FieldKind = "kind"
)
