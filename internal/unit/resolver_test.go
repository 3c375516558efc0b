// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

// # Test Fakes

type fakeRepository struct {
	units      []*unit.Unit
	nextID     int
	failUpdate map[string]error // keyed by unit ID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{failUpdate: map[string]error{}}
}

func (f *fakeRepository) CreateUnit(_ context.Context, u *unit.Unit) error {
	f.nextID++
	u.ID = fmt.Sprintf("unit-%d", f.nextID)
	f.units = append(f.units, u)
	return nil
}

func (f *fakeRepository) GetUnitByName(_ context.Context, storyID, name string) (*unit.Unit, error) {
	for _, u := range f.units {
		if u.StoryID == storyID && u.Name == name {
			return u, nil
		}
	}
	return nil, apperr.NotFound("Unit")
}

func (f *fakeRepository) GetUnitByID(_ context.Context, id string) (*unit.Unit, error) {
	for _, u := range f.units {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("Unit")
}

func (f *fakeRepository) UpdateUnit(_ context.Context, u *unit.Unit) error {
	if err := f.failUpdate[u.ID]; err != nil {
		return err
	}
	for i, existing := range f.units {
		if existing.ID == u.ID {
			f.units[i] = u
			return nil
		}
	}
	return apperr.NotFound("Unit")
}

func (f *fakeRepository) DeleteUnit(_ context.Context, id string) error {
	for i, u := range f.units {
		if u.ID == id {
			f.units = append(f.units[:i], f.units[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Unit")
}

func (f *fakeRepository) ListUnitsByStory(_ context.Context, storyID string) ([]*unit.Unit, error) {
	var out []*unit.Unit
	for _, u := range f.units {
		if u.StoryID == storyID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	story     *unit.StoryInfo
	saveCount int
}

func (f *fakeDirectory) GetStoryInfo(_ context.Context, storyID string) (*unit.StoryInfo, error) {
	if f.story == nil || f.story.ID != storyID {
		return nil, apperr.NotFound("Story")
	}
	info := *f.story
	info.UndefinedNames = append([]string(nil), f.story.UndefinedNames...)
	return &info, nil
}

func (f *fakeDirectory) SaveUndefinedNames(_ context.Context, storyID string, names []string) error {
	if f.story == nil || f.story.ID != storyID {
		return apperr.NotFound("Story")
	}
	f.story.UndefinedNames = names
	f.saveCount++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStory() *unit.StoryInfo {
	return &unit.StoryInfo{
		ID:              "story-1",
		OwnerID:         "user-1",
		Name:            "Harbor Lights",
		SettingAndStyle: "A fog-bound port town, slow-burn mystery.",
		MainChallenge:   "Find out who sank the ferry.",
	}
}

func characterUnit(name string, importantPeople ...string) *unit.Unit {
	return &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindCharacter,
		Name:    name,
		Features: unit.Features{
			unit.FieldName:                        unit.StringValue(name),
			"Important people for this character": unit.ListValue(importantPeople...),
		},
	}
}

// # Reconcile

/*
TestResolver_TracksUndefinedReferences verifies that reference-list entries
pointing at names no unit defines end up in the story ledger.
*/
func TestResolver_TracksUndefinedReferences(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	eve := characterUnit("Eve", "Bob", "Ghost")
	require.NoError(t, repo.CreateUnit(context.Background(), eve))

	require.NoError(t, resolver.Reconcile(context.Background(), eve, ""))

	assert.ElementsMatch(t, []string{"Bob", "Ghost"}, directory.story.UndefinedNames)
	assert.Equal(t, 1, directory.saveCount, "both additions must land in one write")
}

/*
TestResolver_ResolvesOwnName verifies that creating a unit removes its name
from the ledger when other units were referencing it.
*/
func TestResolver_ResolvesOwnName(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	directory.story.UndefinedNames = []string{"Bob", "Ghost"}
	resolver := unit.NewResolver(repo, directory, testLogger())

	bob := characterUnit("Bob")
	require.NoError(t, repo.CreateUnit(context.Background(), bob))

	require.NoError(t, resolver.Reconcile(context.Background(), bob, ""))

	assert.Equal(t, []string{"Ghost"}, directory.story.UndefinedNames)
}

/*
TestResolver_RenamePropagates verifies that a rename rewrites reference
lists and reference-valued string features in every other unit, while the
name field itself is never touched.
*/
func TestResolver_RenamePropagates(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	bob := characterUnit("Robert") // already renamed and persisted
	require.NoError(t, repo.CreateUnit(context.Background(), bob))

	crew := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			unit.FieldName:              unit.StringValue("Ferry Crew"),
			"Who is part of the group?": unit.ListValue("Bob", "Eve"),
			"Reason for solidarity":     unit.StringValue("Bob"),
		},
	}
	require.NoError(t, repo.CreateUnit(context.Background(), crew))

	require.NoError(t, resolver.Reconcile(context.Background(), bob, "Bob"))

	updated, err := repo.GetUnitByName(context.Background(), "story-1", "Ferry Crew")
	require.NoError(t, err)
	assert.Equal(t, []string{"Robert", "Eve"}, updated.Features["Who is part of the group?"].List)
	assert.Equal(t, "Robert", updated.Features["Reason for solidarity"].Str)
	assert.Equal(t, "Ferry Crew", updated.Features[unit.FieldName].Str)
}

/*
TestResolver_NoPropagationOnCreate verifies that a create (empty oldName)
never rewrites other units, even when their lists already spell the new name.
*/
func TestResolver_NoPropagationOnCreate(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	crew := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			unit.FieldName:              unit.StringValue("Ferry Crew"),
			"Who is part of the group?": unit.ListValue("Bob"),
		},
	}
	require.NoError(t, repo.CreateUnit(context.Background(), crew))
	before := crew.Features["Who is part of the group?"].List

	bob := characterUnit("Bob")
	require.NoError(t, repo.CreateUnit(context.Background(), bob))
	require.NoError(t, resolver.Reconcile(context.Background(), bob, ""))

	after, err := repo.GetUnitByName(context.Background(), "story-1", "Ferry Crew")
	require.NoError(t, err)
	assert.Equal(t, before, after.Features["Who is part of the group?"].List)
}

/*
TestResolver_Idempotent verifies that running Reconcile twice with the same
inputs performs no further ledger writes or rewrites.
*/
func TestResolver_Idempotent(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	eve := characterUnit("Eve", "Ghost")
	require.NoError(t, repo.CreateUnit(context.Background(), eve))

	require.NoError(t, resolver.Reconcile(context.Background(), eve, ""))
	savesAfterFirst := directory.saveCount

	require.NoError(t, resolver.Reconcile(context.Background(), eve, ""))

	assert.Equal(t, savesAfterFirst, directory.saveCount)
	assert.Equal(t, []string{"Ghost"}, directory.story.UndefinedNames)
}

/*
TestResolver_UpdateFailureAborts verifies that a failed rewrite persistence
aborts the propagation and surfaces the error.
*/
func TestResolver_UpdateFailureAborts(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	bob := characterUnit("Robert")
	require.NoError(t, repo.CreateUnit(context.Background(), bob))

	crew := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			unit.FieldName:              unit.StringValue("Ferry Crew"),
			"Who is part of the group?": unit.ListValue("Bob"),
		},
	}
	require.NoError(t, repo.CreateUnit(context.Background(), crew))
	repo.failUpdate[crew.ID] = apperr.Internal(fmt.Errorf("connection reset"))

	err := resolver.Reconcile(context.Background(), bob, "Bob")
	require.Error(t, err)
}

/*
TestResolver_TavernScenario walks the full diagnostic scenario: a scene
references an undefined tavern, the tavern gets created, and a character
rename follows every mention.
*/
func TestResolver_TavernScenario(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	resolver := unit.NewResolver(repo, directory, testLogger())

	scene := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindEventOrScene,
		Name:    "Last Call",
		Features: unit.Features{
			unit.FieldName:               unit.StringValue("Last Call"),
			"Which people are involved?": unit.ListValue("Bob", "Eve"),
			"Where might this happen?":   unit.ListValue("The Old Tavern"),
		},
	}
	require.NoError(t, repo.CreateUnit(ctx, scene))
	require.NoError(t, resolver.Reconcile(ctx, scene, ""))
	assert.ElementsMatch(t, []string{"Bob", "Eve", "The Old Tavern"}, directory.story.UndefinedNames)

	tavern := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindPlace,
		Name:    "The Old Tavern",
		Features: unit.Features{
			unit.FieldName: unit.StringValue("The Old Tavern"),
		},
	}
	require.NoError(t, repo.CreateUnit(ctx, tavern))
	require.NoError(t, resolver.Reconcile(ctx, tavern, ""))
	assert.ElementsMatch(t, []string{"Bob", "Eve"}, directory.story.UndefinedNames)

	bob := characterUnit("Robert")
	require.NoError(t, repo.CreateUnit(ctx, bob))
	require.NoError(t, resolver.Reconcile(ctx, bob, "Bob"))

	sceneAfter, err := repo.GetUnitByName(ctx, "story-1", "Last Call")
	require.NoError(t, err)
	assert.Equal(t, []string{"Robert", "Eve"}, sceneAfter.Features["Which people are involved?"].List)
	assert.NotContains(t, directory.story.UndefinedNames, "Robert")
}
