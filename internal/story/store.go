// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package story

import "context"

// Repository is the persistence contract for stories.
type Repository interface {
	// CreateStory inserts a new story with an empty undefined-name ledger.
	CreateStory(ctx context.Context, s *Story) error
	// GetStoryByID resolves a story by primary key.
	GetStoryByID(ctx context.Context, id string) (*Story, error)
	// GetStoryByOwnerAndName resolves a story by its per-owner unique name.
	GetStoryByOwnerAndName(ctx context.Context, ownerID, name string) (*Story, error)
	// ListStoriesByOwner returns a page of the owner's stories plus the total.
	ListStoriesByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Story, int, error)
	// SaveUndefinedNames overwrites the story's undefined-name ledger.
	SaveUndefinedNames(ctx context.Context, storyID string, names []string) error
}
