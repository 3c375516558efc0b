// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
)

const fillSystemPrompt = "You are an assistant that helps fill out feature values for units in a story based on a description."

// FillInput is a feature-prefill request. Draft carries whatever the user
// has typed into the create form so far; it is echoed back merged with the
// model's suggestions and is never persisted by this operation.
type FillInput struct {
	Kind        Kind
	Description string
	Draft       map[string]interface{}
}

// FillFeatures asks the generative collaborator to suggest feature values
// for a unit being drafted.
//
// The contract is all-or-nothing: either the whole suggestion merges into
// the draft and is returned, or the call fails with a BAD_GATEWAY error and
// the draft is untouched. Nothing is written to storage either way.
func (service *Service) FillFeatures(ctx context.Context, gen TextGenerator, callerID, storyID string, input FillInput) (Features, error) {
	story, err := service.requireStory(ctx, callerID, storyID)
	if err != nil {
		return nil, err
	}

	schema, ok := SchemaFor(input.Kind)
	if !ok {
		return nil, apperr.ValidationError("Unknown unit kind",
			apperr.FieldError{Field: FieldKind, Message: "must be one of the built-in kinds"})
	}

	if gen == nil {
		return nil, apperr.ServiceUnavailable("Feature suggestions are not configured")
	}

	// The description falls back to the draft name, then to a generic one,
	// so the model always has something to work from.
	description := strings.TrimSpace(input.Description)
	if description == "" {
		if draftName, ok := input.Draft[FieldName].(string); ok {
			description = strings.TrimSpace(draftName)
		}
	}
	if description == "" {
		description = fmt.Sprintf("The %s should fit well within the story.", input.Kind)
	}

	units, err := service.repo.ListUnitsByStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	prompt := buildFillPrompt(story, units, input.Kind, description, schema)

	responseText, err := gen.GenerateText(ctx, fillSystemPrompt, prompt)
	if err != nil {
		return nil, apperr.BadGateway("Feature suggestion failed", err)
	}

	suggestion := map[string]interface{}{}
	if err := json.Unmarshal([]byte(stripCodeFence(responseText)), &suggestion); err != nil {
		return nil, apperr.BadGateway("The model returned malformed JSON", err)
	}

	// Model values win; the draft fills whatever the model left out. Keys
	// outside the schema are dropped on both sides.
	merged := make(map[string]interface{}, len(schema))
	for key, value := range input.Draft {
		if _, ok := schema.Has(key); ok {
			merged[key] = value
		}
	}
	for key, value := range suggestion {
		if _, ok := schema.Has(key); ok {
			merged[key] = value
		}
	}

	features, fieldErrors := DecodeFeatures(schema, merged)
	if len(fieldErrors) > 0 {
		return nil, apperr.BadGateway("The model suggested values that do not fit the schema", nil)
	}

	service.logger.Info("features_filled",
		slog.String("story_id", storyID),
		slog.String("kind", string(input.Kind)),
	)
	return features, nil
}

// buildFillPrompt assembles the prefill prompt: story context, the full
// existing-unit listing, the target schema, and the user's description.
func buildFillPrompt(story *StoryInfo, units []*Unit, kind Kind, description string, schema Schema) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following story information and the description, please provide values for the features of the unit type '%s' in JSON format.\n", kind)
	b.WriteString("A Unit is an element of the story.\n\n")

	fmt.Fprintf(&b, "Story Setting and Style:\n%s\n\n", story.SettingAndStyle)
	fmt.Fprintf(&b, "Main Challenge:\n%s\n\n", story.MainChallenge)

	b.WriteString("All already existing units of the story:\n")
	b.WriteString(unitListing(units))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Description of the %s to create:\n%s\n\n", kind, description)

	b.WriteString("Please provide a JSON object with the following keys and appropriate values:\n\nFeatures:\n")
	for _, field := range schema {
		fmt.Fprintf(&b, "- '%s' (%s)\n", field.Name, field.Type)
	}

	b.WriteString(`
Example response:
{
    "name": "Name of the unit",
    "feature1": "value1",
    "feature2": true,
    "feature3": 0.5,
    "feature4": ["item1", "item2"],
    "feature5": "Some description"
}

Please ensure the response is valid JSON, starting with the first opening bracket "{" and ending with the last closing bracket "}".
Do not include any text outside of the JSON object.

You should make sure that the feature values are appropriate and consistent with the story and existing units.
If a feature expects a list of names of existing units, please select appropriate ones from the existing units.
If necessary, you may introduce new names, but prefer existing ones.
`)

	return b.String()
}

// unitListing renders units as the indented text block shared by the
// prefill and narrative prompts and the text export.
func unitListing(units []*Unit) string {
	var b strings.Builder
	for _, u := range units {
		fmt.Fprintf(&b, "%s: %s\n", u.Kind, u.Name)
		schema, ok := SchemaFor(u.Kind)
		if !ok {
			continue
		}
		for _, field := range schema {
			value, present := u.Features[field.Name]
			if !present || field.Name == FieldName {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s\n", field.Name, value.Display())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
