// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"context"
	"log/slog"

	"github.com/jonasthedevonoertzen/fabula/pkg/slice"
)

// Resolver keeps a story's undefined-name ledger and every unit's
// reference-valued features mutually consistent as units are created and
// renamed.
//
// # Contract
//
// Reconcile runs after a unit create or edit has been persisted. It
// guarantees, on successful return:
//
//   - no existing unit name remains in the undefined-name ledger;
//   - every name a reference list mentions is either an existing unit's
//     name or present in the ledger;
//   - a rename (oldName != "") has been propagated into every other unit's
//     reference lists and reference-typed string features.
//
// Reconcile is idempotent: a second run with the same inputs mutates
// nothing further.
//
// Deleting a unit is deliberately NOT reconciled: references to the deleted
// name stay in place and its name is not returned to the ledger. Dangling
// references survive until the name is defined again.
type Resolver struct {
	repo    Repository
	stories StoryDirectory
	logger  *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(repo Repository, stories StoryDirectory, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:    repo,
		stories: stories,
		logger:  logger,
	}
}

// Reconcile updates the undefined-name ledger for u's references, resolves
// u's own name if other units were waiting on it, and propagates a rename
// from oldName to u.Name across the story.
//
// oldName is "" for a freshly created unit and for edits that kept the name.
// Only an explicit oldName triggers rewrites of other units; a forward
// reference that already spells u.Name is textually correct and is left
// untouched.
//
// Any persistence failure aborts reconciliation at that point and
// propagates to the caller. Units already rewritten stay rewritten; the
// failed unit keeps its previous state (its rewrite is all-or-nothing).
// There is no automatic retry.
func (r *Resolver) Reconcile(ctx context.Context, u *Unit, oldName string) error {
	info, err := r.stories.GetStoryInfo(ctx, u.StoryID)
	if err != nil {
		return err
	}

	units, err := r.repo.ListUnitsByStory(ctx, u.StoryID)
	if err != nil {
		return err
	}

	defined := make(map[string]bool, len(units))
	for _, existing := range units {
		defined[existing.Name] = true
	}

	// 1. Track names this unit references that no unit defines yet.
	undefined := append([]string(nil), info.UndefinedNames...)
	changed := false

	schema, ok := SchemaFor(u.Kind)
	if !ok {
		schema = Schema{}
	}
	for _, field := range schema {
		if field.Type != TypeReferenceList {
			continue
		}
		for _, name := range u.Features[field.Name].List {
			if !defined[name] && !slice.Contains(undefined, name) {
				undefined = append(undefined, name)
				changed = true
			}
		}
	}

	// 2. This unit now satisfies any references waiting on its name.
	if slice.Contains(undefined, u.Name) {
		undefined = slice.Remove(undefined, u.Name)
		changed = true
	}

	// 3. One ledger write covers both mutations.
	if changed {
		if err := r.stories.SaveUndefinedNames(ctx, u.StoryID, undefined); err != nil {
			return err
		}
	}

	// 4. Propagate the rename into every other unit.
	rewritten := 0
	if oldName != "" && oldName != u.Name {
		for _, other := range units {
			if other.ID == u.ID {
				continue
			}
			if !r.rewriteReferences(other, oldName, u.Name) {
				continue
			}
			if err := r.repo.UpdateUnit(ctx, other); err != nil {
				return err
			}
			rewritten++
		}
	}

	r.logger.Debug("references_reconciled",
		slog.String("story_id", u.StoryID),
		slog.String("unit", u.Name),
		slog.Int("undefined_names", len(undefined)),
		slog.Int("units_rewritten", rewritten),
	)

	return nil
}

// rewriteReferences replaces oldName with newName in every reference-valued
// feature of other, reporting whether anything changed.
func (r *Resolver) rewriteReferences(other *Unit, oldName, newName string) bool {
	schema, ok := SchemaFor(other.Kind)
	if !ok {
		return false
	}

	dirty := false
	for _, field := range schema {
		value, present := other.Features[field.Name]
		if !present {
			continue
		}

		switch field.Type {
		case TypeReferenceList:
			if !slice.Contains(value.List, oldName) {
				continue
			}
			value.List = slice.Map(value.List, func(name string) string {
				if name == oldName {
					return newName
				}
				return name
			})
			other.Features[field.Name] = value
			dirty = true

		case TypeString:
			if field.Name == FieldName || value.Str != oldName {
				continue
			}
			value.Str = newName
			other.Features[field.Name] = value
			dirty = true
		}
	}

	return dirty
}
