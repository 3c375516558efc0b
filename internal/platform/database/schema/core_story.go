package schema

// CoreStoryTable represents the 'core.story' table
type CoreStoryTable struct {
	Table           string
	ID              string
	OwnerID         string
	Name            string
	SettingAndStyle string
	MainChallenge   string
	UndefinedNames  string
	CreatedAt       string
	UpdatedAt       string
}

// CoreStory is the schema definition for core.story
var CoreStory = CoreStoryTable{
	Table:           "core.story",
	ID:              "id",
	OwnerID:         "ownerid",
	Name:            "name",
	SettingAndStyle: "settingandstyle",
	MainChallenge:   "mainchallenge",
	UndefinedNames:  "undefinednames",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t CoreStoryTable) Columns() []string {
	return []string{
		t.ID, t.OwnerID, t.Name, t.SettingAndStyle, t.MainChallenge,
		t.UndefinedNames, t.CreatedAt, t.UpdatedAt,
	}
}
