package ops

import (
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/prompt"
)

// ListTemplatesOutput contains the built-in catalog.
type ListTemplatesOutput struct {
	Templates []prompt.Template `json:"templates"`
	Personas  []prompt.Option   `json:"personas"`
	Lengths   []prompt.Option   `json:"lengths"`
	Depths    []int             `json:"history_depths"`
}

// ListTemplates returns the template presets and form options.
func ListTemplates() (*ListTemplatesOutput, error) {
	c, err := prompt.BuiltinCatalog()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ListTemplatesOutput{
		Templates: c.Templates,
		Personas:  c.Personas,
		Lengths:   c.Lengths,
		Depths:    prompt.HistoryDepthOptions,
	}, nil
}
