// Package ops holds the studio control flow shared by the web, CLI and MCP surfaces.
package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/prompt"
)

// Pagination limits
const (
	DefaultListLimit = 30
	MaxListLimit     = 30
)

// LocalClient is the rate-limit identity used by in-process callers (CLI, MCP).
const LocalClient = "local"

// FallbackNotice tells the user the refined prompt was replaced by the compiled one.
const FallbackNotice = "Using the structured prompt while the API is unavailable."

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Refiner sends compiled text through the generation gateway.
type Refiner interface {
	Generate(ctx context.Context, clientID string, input any) (string, error)
}

// resolveFields overlays fields on the named template's defaults. A blank field
// inherits the template value; an unknown template id is a 400.
func resolveFields(templateID string, fields prompt.FieldSet) (prompt.FieldSet, error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return fields, nil
	}

	catalog, err := prompt.BuiltinCatalog()
	if err != nil {
		return prompt.FieldSet{}, errors.NewInternal(err)
	}
	tpl, ok := catalog.FindTemplate(templateID)
	if !ok {
		return prompt.FieldSet{}, errors.NewInvalidInput("unknown template: " + templateID)
	}

	d := tpl.Defaults
	return prompt.FieldSet{
		Goal:            orDefault(fields.Goal, d.Goal),
		Persona:         orDefault(fields.Persona, d.Persona),
		Audience:        orDefault(fields.Audience, d.Audience),
		Context:         orDefault(fields.Context, d.Context),
		References:      orDefault(fields.References, d.References),
		Constraints:     orDefault(fields.Constraints, d.Constraints),
		Format:          orDefault(fields.Format, d.Format),
		Tone:            orDefault(fields.Tone, d.Tone),
		Length:          orDefault(fields.Length, d.Length),
		Language:        orDefault(fields.Language, d.Language),
		SuccessCriteria: orDefault(fields.SuccessCriteria, d.SuccessCriteria),
	}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
