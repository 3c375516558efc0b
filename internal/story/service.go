// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package story

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/validate"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

// Service orchestrates story operations and adapts the story store to the
// unit domain's [unit.StoryDirectory] contract.
type Service struct {
	repo   Repository
	units  unit.Repository
	logger *slog.Logger
}

// NewService creates a story Service.
func NewService(repo Repository, units unit.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		units:  units,
		logger: logger,
	}
}

// Create validates the input, rejects a name the owner already uses, and
// persists the story with an empty undefined-name ledger.
func (service *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*Story, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.Required(FieldSettingAndStyle, input.SettingAndStyle)
	validator.Required(FieldMainChallenge, input.MainChallenge)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.GetStoryByOwnerAndName(ctx, ownerID, input.Name); err == nil {
		return nil, apperr.Conflict("You already have a story named '" + input.Name + "'")
	} else if !isNotFound(err) {
		return nil, err
	}

	s := &Story{
		OwnerID:         ownerID,
		Name:            input.Name,
		SettingAndStyle: input.SettingAndStyle,
		MainChallenge:   input.MainChallenge,
	}
	if err := service.repo.CreateStory(ctx, s); err != nil {
		return nil, err
	}

	service.logger.Info("story_created",
		slog.String("story_id", s.ID),
		slog.String("name", s.Name),
	)
	return s, nil
}

// List returns a page of the caller's stories.
func (service *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*Story, int, error) {
	return service.repo.ListStoriesByOwner(ctx, ownerID, limit, offset)
}

// Get resolves a story and enforces ownership.
func (service *Service) Get(ctx context.Context, callerID, storyID string) (*Story, error) {
	s, err := service.repo.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != callerID {
		return nil, apperr.Forbidden("You do not own this story")
	}
	return s, nil
}

// Detail returns a story together with all of its units.
func (service *Service) Detail(ctx context.Context, callerID, storyID string) (*Story, []*unit.Unit, error) {
	s, err := service.Get(ctx, callerID, storyID)
	if err != nil {
		return nil, nil, err
	}

	units, err := service.units.ListUnitsByStory(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	return s, units, nil
}

// GetStoryInfo implements [unit.StoryDirectory].
func (service *Service) GetStoryInfo(ctx context.Context, storyID string) (*unit.StoryInfo, error) {
	s, err := service.repo.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return &unit.StoryInfo{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		Name:            s.Name,
		SettingAndStyle: s.SettingAndStyle,
		MainChallenge:   s.MainChallenge,
		UndefinedNames:  s.UndefinedNames,
	}, nil
}

// SaveUndefinedNames implements [unit.StoryDirectory].
func (service *Service) SaveUndefinedNames(ctx context.Context, storyID string, names []string) error {
	return service.repo.SaveUndefinedNames(ctx, storyID, names)
}

func isNotFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.Code == "NOT_FOUND"
	}
	return false
}
