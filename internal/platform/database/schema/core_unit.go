package schema

// CoreUnitTable represents the 'core.unit' table
type CoreUnitTable struct {
	Table     string
	ID        string
	StoryID   string
	Kind      string
	Name      string
	Features  string
	CreatedAt string
	UpdatedAt string
}

// CoreUnit is the schema definition for core.unit
var CoreUnit = CoreUnitTable{
	Table:     "core.unit",
	ID:        "id",
	StoryID:   "storyid",
	Kind:      "kind",
	Name:      "name",
	Features:  "features",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t CoreUnitTable) Columns() []string {
	return []string{
		t.ID, t.StoryID, t.Kind, t.Name, t.Features, t.CreatedAt, t.UpdatedAt,
	}
}
