// Package label manages the flat label namespace used to organize units
// across stories: automatic labels attached on unit creation, user-defined
// labels, and label-filtered unit search.
package label

import (
	"time"

	"github.com/jonasthedevonoertzen/fabula/internal/unit"
)

// Label is a reusable tag. OwnerID is nil for shared automatic labels
// (story names, unit kinds, "copy") and set for user-created ones.
type Label struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchFilter narrows the cross-story unit search. Include labels are
// OR-ed, exclude labels remove any unit carrying one of them, and Query
// matches name, kind, or feature content.
type SearchFilter struct {
	IncludeLabelIDs []string
	ExcludeLabelIDs []string
	Query           string
}

// UnitMatch is a search hit with the label names attached to the unit.
type UnitMatch struct {
	Unit   *unit.Unit `json:"unit"`
	Labels []string   `json:"labels"`
}
