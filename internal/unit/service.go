// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/validate"
)

// AutoLabelCopy is applied to units created through the copy flow.
const AutoLabelCopy = "copy"

// KindInfo is the public description of one entity kind.
type KindInfo struct {
	Kind   Kind   `json:"kind"`
	Schema Schema `json:"schema"`
}

// Service orchestrates unit operations: validation, the duplicate-name
// guard, persistence, reconciliation and automatic labelling.
type Service struct {
	repo     Repository
	stories  StoryDirectory
	resolver *Resolver
	labels   Labeler
	logger   *slog.Logger
}

// NewService creates a unit Service. labels may be nil in tests.
func NewService(repo Repository, stories StoryDirectory, resolver *Resolver, labels Labeler, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		stories:  stories,
		resolver: resolver,
		labels:   labels,
		logger:   logger,
	}
}

// ListKinds returns every built-in kind with its schema.
func (service *Service) ListKinds() []KindInfo {
	kinds := AllKinds()
	infos := make([]KindInfo, 0, len(kinds))
	for _, kind := range kinds {
		schema, _ := SchemaFor(kind)
		infos = append(infos, KindInfo{Kind: kind, Schema: schema})
	}
	return infos
}

// requireStory resolves the story and enforces ownership. A story owned by
// someone else is reported as Forbidden.
func (service *Service) requireStory(ctx context.Context, callerID, storyID string) (*StoryInfo, error) {
	info, err := service.stories.GetStoryInfo(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID != callerID {
		return nil, apperr.Forbidden("You do not own this story")
	}
	return info, nil
}

// ListByStory returns every unit of the caller's story.
func (service *Service) ListByStory(ctx context.Context, callerID, storyID string) ([]*Unit, error) {
	if _, err := service.requireStory(ctx, callerID, storyID); err != nil {
		return nil, err
	}
	return service.repo.ListUnitsByStory(ctx, storyID)
}

// Get resolves one unit of the caller's story by name.
func (service *Service) Get(ctx context.Context, callerID, storyID, name string) (*Unit, error) {
	if _, err := service.requireStory(ctx, callerID, storyID); err != nil {
		return nil, err
	}
	return service.repo.GetUnitByName(ctx, storyID, name)
}

// Create validates kind and features, guards against duplicate names,
// persists the unit, applies automatic labels and reconciles references.
//
// creatorUsername feeds the automatic labels; it may be empty.
func (service *Service) Create(ctx context.Context, callerID, creatorUsername, storyID string, kind Kind, raw map[string]interface{}) (*Unit, error) {
	story, err := service.requireStory(ctx, callerID, storyID)
	if err != nil {
		return nil, err
	}

	u, err := service.buildUnit(storyID, kind, raw)
	if err != nil {
		return nil, err
	}

	// Duplicate guard runs before any mutation.
	if err := service.guardName(ctx, storyID, u.Name, ""); err != nil {
		return nil, err
	}

	if err := service.repo.CreateUnit(ctx, u); err != nil {
		return nil, err
	}

	service.applyAutoLabels(ctx, u, story.Name, creatorUsername, false)

	if err := service.resolver.Reconcile(ctx, u, ""); err != nil {
		return nil, err
	}

	service.logger.Info("unit_created",
		slog.String("story_id", storyID),
		slog.String("kind", string(kind)),
		slog.String("name", u.Name),
	)
	return u, nil
}

// Update overwrites a unit's features (and possibly its name), then
// reconciles. A rename passes the previous name into the resolver so that
// other units' references follow.
func (service *Service) Update(ctx context.Context, callerID, storyID, name string, raw map[string]interface{}) (*Unit, error) {
	if _, err := service.requireStory(ctx, callerID, storyID); err != nil {
		return nil, err
	}

	existing, err := service.repo.GetUnitByName(ctx, storyID, name)
	if err != nil {
		return nil, err
	}

	updated, err := service.buildUnit(storyID, existing.Kind, raw)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	oldName := ""
	if updated.Name != existing.Name {
		if err := service.guardName(ctx, storyID, updated.Name, existing.ID); err != nil {
			return nil, err
		}
		oldName = existing.Name
	}

	if err := service.repo.UpdateUnit(ctx, updated); err != nil {
		return nil, err
	}

	if err := service.resolver.Reconcile(ctx, updated, oldName); err != nil {
		return nil, err
	}

	service.logger.Info("unit_updated",
		slog.String("story_id", storyID),
		slog.String("name", updated.Name),
		slog.Bool("renamed", oldName != ""),
	)
	return updated, nil
}

// Delete removes a unit by name. References other units hold to the deleted
// name are left in place and its name is not returned to the undefined-name
// ledger; the dangling references resolve again if the name is ever
// re-created.
func (service *Service) Delete(ctx context.Context, callerID, storyID, name string) error {
	if _, err := service.requireStory(ctx, callerID, storyID); err != nil {
		return err
	}

	existing, err := service.repo.GetUnitByName(ctx, storyID, name)
	if err != nil {
		return err
	}

	if err := service.repo.DeleteUnit(ctx, existing.ID); err != nil {
		return err
	}

	service.logger.Warn("unit_deleted",
		slog.String("story_id", storyID),
		slog.String("name", name),
	)
	return nil
}

// Copy inserts an existing unit (from any story the caller can see in the
// shared index) into the caller's story, features cloned, with the copy
// label applied.
func (service *Service) Copy(ctx context.Context, callerID, creatorUsername, storyID, sourceUnitID string) (*Unit, error) {
	story, err := service.requireStory(ctx, callerID, storyID)
	if err != nil {
		return nil, err
	}

	source, err := service.repo.GetUnitByID(ctx, sourceUnitID)
	if err != nil {
		return nil, err
	}

	if err := service.guardName(ctx, storyID, source.Name, ""); err != nil {
		return nil, err
	}

	clone := &Unit{
		StoryID:  storyID,
		Kind:     source.Kind,
		Name:     source.Name,
		Features: source.Features.Clone(),
	}
	if err := service.repo.CreateUnit(ctx, clone); err != nil {
		return nil, err
	}

	service.applyAutoLabels(ctx, clone, story.Name, creatorUsername, true)

	service.logger.Info("unit_copied",
		slog.String("story_id", storyID),
		slog.String("source_unit_id", sourceUnitID),
		slog.String("name", clone.Name),
	)
	return clone, nil
}

// Template returns an existing unit's kind and features for use as a
// pre-filled create form. Nothing is persisted.
func (service *Service) Template(ctx context.Context, unitID string) (*Unit, error) {
	return service.repo.GetUnitByID(ctx, unitID)
}

// buildUnit validates the kind, decodes the raw feature payload against the
// schema and requires a non-empty name. All problems are reported together.
func (service *Service) buildUnit(storyID string, kind Kind, raw map[string]interface{}) (*Unit, error) {
	schema, ok := SchemaFor(kind)
	if !ok {
		return nil, apperr.ValidationError("Unknown unit kind",
			apperr.FieldError{Field: FieldKind, Message: "must be one of the built-in kinds"})
	}

	features, fieldErrors := DecodeFeatures(schema, raw)

	validator := &validate.Validator{}
	for _, fieldError := range fieldErrors {
		validator.Field(fieldError)
	}
	validator.Required(FieldName, features.Name())

	if err := validator.Err(); err != nil {
		return nil, err
	}

	return &Unit{
		StoryID:  storyID,
		Kind:     kind,
		Name:     features.Name(),
		Features: features,
	}, nil
}

// guardName rejects a candidate name already taken by a different unit in
// the story. No mutation has happened when it fails.
func (service *Service) guardName(ctx context.Context, storyID, name, selfID string) error {
	existing, err := service.repo.GetUnitByName(ctx, storyID, name)
	if err != nil {
		if notFound(err) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperr.Conflict("A unit named '" + name + "' already exists in this story")
}

// applyAutoLabels attaches the automatic labels (story name, kind, creator
// username, copy marker). Labelling is best effort: a failure is logged and
// never blocks the unit operation itself.
func (service *Service) applyAutoLabels(ctx context.Context, u *Unit, storyName, creatorUsername string, isCopy bool) {
	if service.labels == nil {
		return
	}

	names := []string{storyName, string(u.Kind)}
	if creatorUsername != "" {
		names = append(names, creatorUsername)
	}
	if isCopy {
		names = append(names, AutoLabelCopy)
	}

	if err := service.labels.ApplyAutoLabels(ctx, u.ID, names); err != nil {
		service.logger.Warn("auto_labels_failed",
			slog.String("unit_id", u.ID),
			slog.String("error", err.Error()),
		)
	}
}

func notFound(err error) bool {
	var appError *apperr.AppError
	if errors.As(err, &appError) {
		return appError.Code == "NOT_FOUND"
	}
	return false
}
