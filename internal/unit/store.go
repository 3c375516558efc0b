// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import "context"

// Repository is the persistence contract for units. Implementations must
// make each operation atomic: a concurrent reader never observes a
// partially written unit.
type Repository interface {
	// CreateUnit inserts a new unit and fills in ID and timestamps.
	// A duplicate (story, name) pair yields a Conflict error.
	CreateUnit(ctx context.Context, u *Unit) error
	// GetUnitByName resolves a unit by its per-story unique name.
	GetUnitByName(ctx context.Context, storyID, name string) (*Unit, error)
	// GetUnitByID resolves a unit by primary key.
	GetUnitByID(ctx context.Context, id string) (*Unit, error)
	// UpdateUnit overwrites name and features of an existing unit.
	UpdateUnit(ctx context.Context, u *Unit) error
	// DeleteUnit removes a unit by primary key.
	DeleteUnit(ctx context.Context, id string) error
	// ListUnitsByStory returns every unit of a story.
	ListUnitsByStory(ctx context.Context, storyID string) ([]*Unit, error)
}
