// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

type fakeLabeler struct {
	applied map[string][]string
	err     error
}

func (f *fakeLabeler) ApplyAutoLabels(_ context.Context, unitID string, names []string) error {
	if f.err != nil {
		return f.err
	}
	if f.applied == nil {
		f.applied = map[string][]string{}
	}
	f.applied[unitID] = names
	return nil
}

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestService(repo *fakeRepository, directory *fakeDirectory, labels unit.Labeler) *unit.Service {
	logger := testLogger()
	resolver := unit.NewResolver(repo, directory, logger)
	return unit.NewService(repo, directory, resolver, labels, logger)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, code, appError.Code)
}

/*
TestService_Create covers the happy path: validation, persistence,
auto-labels and ledger bookkeeping in one pass.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	labels := &fakeLabeler{}
	service := newTestService(repo, directory, labels)

	created, err := service.Create(context.Background(), "user-1", "jonas", "story-1", unit.KindCharacter,
		map[string]interface{}{
			"name":                                "Eve",
			"Important people for this character": []interface{}{"Bob"},
		})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Eve", created.Name)
	assert.Equal(t, []string{"Bob"}, directory.story.UndefinedNames)
	assert.Equal(t, []string{"Harbor Lights", "Character", "jonas"}, labels.applied[created.ID])
}

/*
TestService_Create_DuplicateName verifies the duplicate guard fires before
any mutation.
*/
func TestService_Create_DuplicateName(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	eve := characterUnit("Eve")
	require.NoError(t, repo.CreateUnit(context.Background(), eve))

	_, err := service.Create(context.Background(), "user-1", "", "story-1", unit.KindCharacter,
		map[string]interface{}{"name": "Eve"})
	assertCode(t, err, "CONFLICT")
	assert.Len(t, repo.units, 1)
}

/*
TestService_Create_Validation verifies unknown kinds and missing names are
rejected as validation errors.
*/
func TestService_Create_Validation(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	_, err := service.Create(context.Background(), "user-1", "", "story-1", unit.Kind("Spaceship"),
		map[string]interface{}{"name": "X"})
	assertCode(t, err, "VALIDATION_ERROR")

	_, err = service.Create(context.Background(), "user-1", "", "story-1", unit.KindCharacter,
		map[string]interface{}{"name": "   "})
	assertCode(t, err, "VALIDATION_ERROR")
}

/*
TestService_Create_Forbidden verifies story ownership is enforced.
*/
func TestService_Create_Forbidden(t *testing.T) {
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	_, err := service.Create(context.Background(), "intruder", "", "story-1", unit.KindCharacter,
		map[string]interface{}{"name": "Eve"})
	assertCode(t, err, "FORBIDDEN")
}

/*
TestService_Update_Rename verifies that renaming a unit rewrites the other
units' references through the resolver.
*/
func TestService_Update_Rename(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	bob := characterUnit("Bob")
	require.NoError(t, repo.CreateUnit(ctx, bob))
	crew := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			unit.FieldName:              unit.StringValue("Ferry Crew"),
			"Who is part of the group?": unit.ListValue("Bob"),
		},
	}
	require.NoError(t, repo.CreateUnit(ctx, crew))

	updated, err := service.Update(ctx, "user-1", "story-1", "Bob",
		map[string]interface{}{"name": "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, bob.ID, updated.ID)

	crewAfter, err := repo.GetUnitByName(ctx, "story-1", "Ferry Crew")
	require.NoError(t, err)
	assert.Equal(t, []string{"Robert"}, crewAfter.Features["Who is part of the group?"].List)
}

/*
TestService_Update_KeepName verifies that an edit without a rename leaves
other units untouched.
*/
func TestService_Update_KeepName(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	bob := characterUnit("Bob")
	require.NoError(t, repo.CreateUnit(ctx, bob))

	updated, err := service.Update(ctx, "user-1", "story-1", "Bob",
		map[string]interface{}{
			"name":              "Bob",
			"Skills or talents": "Knots and navigation",
		})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "Knots and navigation", updated.Features["Skills or talents"].Str)
}

/*
TestService_Delete verifies that deletion leaves other units' references
and the ledger alone.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	bob := characterUnit("Bob")
	require.NoError(t, repo.CreateUnit(ctx, bob))
	crew := &unit.Unit{
		StoryID: "story-1",
		Kind:    unit.KindGrouping,
		Name:    "Ferry Crew",
		Features: unit.Features{
			unit.FieldName:              unit.StringValue("Ferry Crew"),
			"Who is part of the group?": unit.ListValue("Bob"),
		},
	}
	require.NoError(t, repo.CreateUnit(ctx, crew))

	require.NoError(t, service.Delete(ctx, "user-1", "story-1", "Bob"))

	_, err := repo.GetUnitByName(ctx, "story-1", "Bob")
	assertCode(t, err, "NOT_FOUND")
	crewAfter, err := repo.GetUnitByName(ctx, "story-1", "Ferry Crew")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, crewAfter.Features["Who is part of the group?"].List)
	assert.Empty(t, directory.story.UndefinedNames)
}

/*
TestService_Copy verifies the copy flow clones features, applies the copy
label, and never aliases the source's lists.
*/
func TestService_Copy(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	labels := &fakeLabeler{}
	service := newTestService(repo, directory, labels)

	source := characterUnit("Eve", "Bob")
	source.StoryID = "story-2" // lives in another story
	require.NoError(t, repo.CreateUnit(ctx, source))

	clone, err := service.Copy(ctx, "user-1", "jonas", "story-1", source.ID)
	require.NoError(t, err)

	assert.Equal(t, "story-1", clone.StoryID)
	assert.Equal(t, source.Name, clone.Name)
	assert.Contains(t, labels.applied[clone.ID], unit.AutoLabelCopy)

	clone.Features["Important people for this character"].List[0] = "Mallory"
	assert.Equal(t, "Bob", source.Features["Important people for this character"].List[0])
}

/*
TestService_FillFeatures covers the all-or-nothing suggestion contract,
including fenced model output and malformed JSON.
*/
func TestService_FillFeatures(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	directory := &fakeDirectory{story: testStory()}
	service := newTestService(repo, directory, nil)

	input := unit.FillInput{
		Kind:        unit.KindCharacter,
		Description: "A retired ferry captain.",
		Draft:       map[string]interface{}{"name": "Captain Holt"},
	}

	t.Run("merges_fenced_suggestion", func(t *testing.T) {
		gen := &fakeGenerator{response: "```json\n" +
			`{"name": "Captain Holt", "Skills or talents": "Dead reckoning", "Is this a player character?": false}` +
			"\n```"}

		features, err := service.FillFeatures(ctx, gen, "user-1", "story-1", input)
		require.NoError(t, err)
		assert.Equal(t, "Captain Holt", features.Name())
		assert.Equal(t, "Dead reckoning", features["Skills or talents"].Str)
		assert.Len(t, repo.units, 0, "fill must not persist anything")
	})

	t.Run("malformed_json", func(t *testing.T) {
		gen := &fakeGenerator{response: "Sure! Here are some ideas for your character..."}

		_, err := service.FillFeatures(ctx, gen, "user-1", "story-1", input)
		assertCode(t, err, "BAD_GATEWAY")
	})

	t.Run("generator_failure", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("upstream timeout")}

		_, err := service.FillFeatures(ctx, gen, "user-1", "story-1", input)
		assertCode(t, err, "BAD_GATEWAY")
	})

	t.Run("unfit_suggestion", func(t *testing.T) {
		gen := &fakeGenerator{response: `{"name": "Captain Holt", "Is this a player character?": "absolutely"}`}

		_, err := service.FillFeatures(ctx, gen, "user-1", "story-1", input)
		assertCode(t, err, "BAD_GATEWAY")
	})

	t.Run("not_configured", func(t *testing.T) {
		_, err := service.FillFeatures(ctx, nil, "user-1", "story-1", input)
		assertCode(t, err, "SERVICE_UNAVAILABLE")
	})
}
