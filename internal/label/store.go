package label

import "context"

// Repository is the persistence contract for labels and their unit
// assignments.
type Repository interface {
	GetOrCreateLabel(ctx context.Context, name string, ownerID *string) (*Label, error)
	AssignLabelsToUnits(ctx context.Context, labelIDs, unitIDs []string) error
	ListLabels(ctx context.Context) ([]*Label, error)
	SearchUnits(ctx context.Context, filter SearchFilter) ([]*UnitMatch, error)
}
