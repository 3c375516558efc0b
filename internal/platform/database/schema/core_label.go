package schema

// CoreLabelTable represents the 'core.label' table
type CoreLabelTable struct {
	Table     string
	ID        string
	Name      string
	OwnerID   string
	CreatedAt string
}

// CoreLabel is the schema definition for core.label
var CoreLabel = CoreLabelTable{
	Table:     "core.label",
	ID:        "id",
	Name:      "name",
	OwnerID:   "ownerid",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t CoreLabelTable) Columns() []string {
	return []string{t.ID, t.Name, t.OwnerID, t.CreatedAt}
}
