package schema

// UnitLabelTable represents the 'core.unitlabel' table
type UnitLabelTable struct {
	Table   string
	UnitID  string
	LabelID string
}

// UnitLabel is the schema definition for core.unitlabel
var UnitLabel = UnitLabelTable{
	Table:   "core.unitlabel",
	UnitID:  "unitid",
	LabelID: "labelid",
}
