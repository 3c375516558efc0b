// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package story_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/story"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

type fakeRepository struct {
	stories []*story.Story
	nextID  int
}

func (f *fakeRepository) CreateStory(_ context.Context, s *story.Story) error {
	f.nextID++
	s.ID = fmt.Sprintf("story-%d", f.nextID)
	if s.UndefinedNames == nil {
		s.UndefinedNames = []string{}
	}
	f.stories = append(f.stories, s)
	return nil
}

func (f *fakeRepository) GetStoryByID(_ context.Context, id string) (*story.Story, error) {
	for _, s := range f.stories {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperr.NotFound("Story")
}

func (f *fakeRepository) GetStoryByOwnerAndName(_ context.Context, ownerID, name string) (*story.Story, error) {
	for _, s := range f.stories {
		if s.OwnerID == ownerID && s.Name == name {
			return s, nil
		}
	}
	return nil, apperr.NotFound("Story")
}

func (f *fakeRepository) ListStoriesByOwner(_ context.Context, ownerID string, limit, offset int) ([]*story.Story, int, error) {
	var owned []*story.Story
	for _, s := range f.stories {
		if s.OwnerID == ownerID {
			owned = append(owned, s)
		}
	}
	total := len(owned)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (f *fakeRepository) SaveUndefinedNames(_ context.Context, storyID string, names []string) error {
	for _, s := range f.stories {
		if s.ID == storyID {
			s.UndefinedNames = names
			return nil
		}
	}
	return apperr.NotFound("Story")
}

type fakeUnitRepository struct {
	units []*unit.Unit
}

func (f *fakeUnitRepository) CreateUnit(_ context.Context, u *unit.Unit) error { return nil }
func (f *fakeUnitRepository) GetUnitByName(_ context.Context, _, _ string) (*unit.Unit, error) {
	return nil, apperr.NotFound("Unit")
}
func (f *fakeUnitRepository) GetUnitByID(_ context.Context, _ string) (*unit.Unit, error) {
	return nil, apperr.NotFound("Unit")
}
func (f *fakeUnitRepository) UpdateUnit(_ context.Context, _ *unit.Unit) error { return nil }
func (f *fakeUnitRepository) DeleteUnit(_ context.Context, _ string) error     { return nil }
func (f *fakeUnitRepository) ListUnitsByStory(_ context.Context, storyID string) ([]*unit.Unit, error) {
	var out []*unit.Unit
	for _, u := range f.units {
		if u.StoryID == storyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepository, units *fakeUnitRepository) *story.Service {
	return story.NewService(repo, units, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validInput() story.CreateInput {
	return story.CreateInput{
		Name:            "Harbor Lights",
		SettingAndStyle: "A fog-bound port town, slow-burn mystery.",
		MainChallenge:   "Find out who sank the ferry.",
	}
}

/*
TestService_Create verifies story creation initializes an empty ledger.
*/
func TestService_Create(t *testing.T) {
	service := newTestService(&fakeRepository{}, &fakeUnitRepository{})

	s, err := service.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "user-1", s.OwnerID)
	assert.Equal(t, []string{}, s.UndefinedNames)
}

/*
TestService_Create_Validation verifies all missing fields are reported
together.
*/
func TestService_Create_Validation(t *testing.T) {
	service := newTestService(&fakeRepository{}, &fakeUnitRepository{})

	_, err := service.Create(context.Background(), "user-1", story.CreateInput{})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

/*
TestService_Create_DuplicateName verifies the per-owner name guard.
*/
func TestService_Create_DuplicateName(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo, &fakeUnitRepository{})

	_, err := service.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = service.Create(context.Background(), "user-1", validInput())
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// A different owner may reuse the name.
	_, err = service.Create(context.Background(), "user-2", validInput())
	require.NoError(t, err)
}

/*
TestService_Get_Ownership verifies foreign stories are Forbidden, not
NotFound, so the caller knows the ID was valid.
*/
func TestService_Get_Ownership(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo, &fakeUnitRepository{})

	s, err := service.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = service.Get(context.Background(), "user-2", s.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestService_Detail returns the story together with its units.
*/
func TestService_Detail(t *testing.T) {
	repo := &fakeRepository{}
	units := &fakeUnitRepository{}
	service := newTestService(repo, units)

	s, err := service.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	units.units = append(units.units, &unit.Unit{StoryID: s.ID, Kind: unit.KindCharacter, Name: "Bob"})

	detail, storyUnits, err := service.Detail(context.Background(), "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, detail.ID)
	require.Len(t, storyUnits, 1)
	assert.Equal(t, "Bob", storyUnits[0].Name)
}

/*
TestService_StoryDirectory verifies the unit-facing adapter mirrors the
repository state.
*/
func TestService_StoryDirectory(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo, &fakeUnitRepository{})

	s, err := service.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	info, err := service.GetStoryInfo(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.OwnerID, info.OwnerID)
	assert.Equal(t, s.Name, info.Name)

	require.NoError(t, service.SaveUndefinedNames(context.Background(), s.ID, []string{"Ghost"}))

	info, err = service.GetStoryInfo(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghost"}, info.UndefinedNames)
}
