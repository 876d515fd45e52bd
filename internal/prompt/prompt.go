// Package prompt compiles a user's structured intent into canonical instruction text.
package prompt

import (
	"strings"

	"github.com/hpungsan/quill/internal/errors"
)

// FieldSet is the typed description of the prompt a user wants.
// Only Goal is required; every other field is optional free text.
type FieldSet struct {
	Goal            string `json:"goal" yaml:"goal"`
	Persona         string `json:"persona,omitempty" yaml:"persona"`
	Audience        string `json:"audience,omitempty" yaml:"audience"`
	Context         string `json:"context,omitempty" yaml:"context"`
	References      string `json:"references,omitempty" yaml:"references"`
	Constraints     string `json:"constraints,omitempty" yaml:"constraints"`
	Format          string `json:"format,omitempty" yaml:"format"`
	Tone            string `json:"tone,omitempty" yaml:"tone"`
	Length          string `json:"length,omitempty" yaml:"length"`
	Language        string `json:"language,omitempty" yaml:"language"`
	SuccessCriteria string `json:"success_criteria,omitempty" yaml:"success_criteria"`
}

// QualityFlags toggle the optional QUALITY BAR directives.
type QualityFlags struct {
	AskClarifying    bool `json:"ask_clarifying"`
	StateAssumptions bool `json:"state_assumptions"`
	IncludeChecklist bool `json:"include_checklist"`
}

// DefaultQualityFlags mirrors the studio form's initial state.
func DefaultQualityFlags() QualityFlags {
	return QualityFlags{AskClarifying: true, StateAssumptions: true}
}

// Any reports whether at least one flag is set.
func (q QualityFlags) Any() bool {
	return q.AskClarifying || q.StateAssumptions || q.IncludeChecklist
}

// ValidateGoal rejects a field set whose goal is blank. Compile assumes this passed.
func ValidateGoal(fields FieldSet) error {
	if strings.TrimSpace(fields.Goal) == "" {
		return errors.NewInvalidInput("Add a goal to get started.")
	}
	return nil
}
