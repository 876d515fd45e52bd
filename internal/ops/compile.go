package ops

import (
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/prompt"
)

// CompileInput contains parameters for the Compile operation.
type CompileInput struct {
	Template       string               `json:"template,omitempty"`
	Fields         prompt.FieldSet      `json:"fields"`
	Flags          *prompt.QualityFlags `json:"flags,omitempty"` // nil: studio defaults
	IncludeHistory bool                 `json:"include_history"`
	HistoryDepth   int                  `json:"history_depth,omitempty"` // default: 3, clamped to [1, 30]
}

// CompileOutput contains the result of the Compile operation.
type CompileOutput struct {
	Prompt   string `json:"prompt"`
	Snippets int    `json:"snippets"`
}

// Compile validates the goal and assembles the structured prompt. store may be
// nil when continuity is not requested.
func Compile(store *history.Store, input CompileInput) (*CompileOutput, error) {
	fields, err := resolveFields(input.Template, input.Fields)
	if err != nil {
		return nil, err
	}
	if err := prompt.ValidateGoal(fields); err != nil {
		return nil, err
	}

	flags := prompt.DefaultQualityFlags()
	if input.Flags != nil {
		flags = *input.Flags
	}

	var snippets []string
	if input.IncludeHistory && store != nil {
		depth := input.HistoryDepth
		if depth == 0 {
			depth = prompt.DefaultHistoryDepth
		}
		snippets = store.Snippets(depth)
	}

	return &CompileOutput{
		Prompt:   prompt.Compile(fields, flags, snippets),
		Snippets: len(snippets),
	}, nil
}
