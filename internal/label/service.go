package label

import (
	"context"
	"log/slog"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/validate"
	"github.com/jonasthedevonoertzen/fabula/pkg/pointer"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListLabels(ctx context.Context) ([]*Label, error) {
	return service.repo.ListLabels(ctx)
}

// Assign creates (or reuses) a label owned by the caller and attaches it
// to the given units.
func (service *Service) Assign(ctx context.Context, ownerID, name string, unitIDs []string) (*Label, error) {
	validator := &validate.Validator{}
	validator.Required("name", name)
	validator.Custom("unit_ids", len(unitIDs) == 0, "At least one unit is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	l, err := service.repo.GetOrCreateLabel(ctx, name, pointer.To(ownerID))
	if err != nil {
		return nil, err
	}
	if err := service.repo.AssignLabelsToUnits(ctx, []string{l.ID}, unitIDs); err != nil {
		return nil, err
	}

	service.logger.Info("labels_assigned",
		slog.String("label", l.Name),
		slog.Int("units", len(unitIDs)),
	)
	return l, nil
}

// SearchUnits runs the cross-story label-filtered search.
func (service *Service) SearchUnits(ctx context.Context, filter SearchFilter) ([]*UnitMatch, error) {
	return service.repo.SearchUnits(ctx, filter)
}

// ApplyAutoLabels resolves each shared label by name, creating missing
// ones, and attaches all of them to the unit.
func (service *Service) ApplyAutoLabels(ctx context.Context, unitID string, names []string) error {
	labelIDs := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		l, err := service.repo.GetOrCreateLabel(ctx, name, nil)
		if err != nil {
			return err
		}
		labelIDs = append(labelIDs, l.ID)
	}
	return service.repo.AssignLabelsToUnits(ctx, labelIDs, []string{unitID})
}
