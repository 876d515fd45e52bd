package prompt

import "strings"

const (
	DefaultPersona      = "You are a helpful AI assistant."
	ContinuityDirective = "Use prior outputs as context. Avoid repeating content unless requested."
	DeliveryDirective   = "Be concise, structured, and directly useful."

	clarifyingLine  = "Ask up to 3 clarifying questions if key details are missing."
	assumptionsLine = "State any assumptions explicitly."
	checklistLine   = "Include a short checklist before the final output."
)

// Section labels, in emission order.
const (
	LabelTask            = "TASK:"
	LabelAudience        = "TARGET AUDIENCE:"
	LabelContext         = "CONTEXT:"
	LabelReferences      = "REFERENCE MATERIAL:"
	LabelFormat          = "OUTPUT FORMAT:"
	LabelTone            = "TONE:"
	LabelLength          = "LENGTH:"
	LabelLanguage        = "LANGUAGE:"
	LabelConstraints     = "CONSTRAINTS:"
	LabelSuccessCriteria = "SUCCESS CRITERIA:"
	LabelPriorOutputs    = "PRIOR OUTPUTS (MOST RECENT FIRST):"
	LabelContinuity      = "CONTINUITY:"
	LabelQualityBar      = "QUALITY BAR:"
	LabelDelivery        = "DELIVERY:"
)

// Labels lists every section label Compile can emit, persona line excluded.
var Labels = []string{
	LabelTask, LabelAudience, LabelContext, LabelReferences, LabelFormat, LabelTone,
	LabelLength, LabelLanguage, LabelConstraints, LabelSuccessCriteria,
	LabelPriorOutputs, LabelContinuity, LabelQualityBar, LabelDelivery,
}

// Compile assembles the canonical instruction text for fields.
//
// snippets are emitted verbatim in the given order; callers pass them most recent
// first, already truncated (see Snippets). The result depends on nothing but the
// arguments. fields.Goal must be non-blank (see ValidateGoal).
func Compile(fields FieldSet, flags QualityFlags, snippets []string) string {
	persona := strings.TrimSpace(fields.Persona)
	if persona == "" {
		persona = DefaultPersona
	}

	lines := []string{persona}
	lines = appendSection(lines, LabelTask, strings.TrimSpace(fields.Goal))

	optional := []struct {
		label string
		value string
	}{
		{LabelAudience, fields.Audience},
		{LabelContext, fields.Context},
		{LabelReferences, fields.References},
		{LabelFormat, fields.Format},
		{LabelTone, fields.Tone},
		{LabelLength, fields.Length},
		{LabelLanguage, fields.Language},
		{LabelConstraints, fields.Constraints},
		{LabelSuccessCriteria, fields.SuccessCriteria},
	}
	for _, f := range optional {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = appendSection(lines, f.label, v)
		}
	}

	if len(snippets) > 0 {
		lines = appendSection(lines, LabelPriorOutputs, snippets...)
		lines = appendSection(lines, LabelContinuity, ContinuityDirective)
	}

	var quality []string
	if flags.AskClarifying {
		quality = append(quality, "- "+clarifyingLine)
	}
	if flags.StateAssumptions {
		quality = append(quality, "- "+assumptionsLine)
	}
	if flags.IncludeChecklist {
		quality = append(quality, "- "+checklistLine)
	}
	if len(quality) > 0 {
		lines = appendSection(lines, LabelQualityBar, quality...)
	}

	lines = appendSection(lines, LabelDelivery, DeliveryDirective)

	return strings.Join(lines, "\n")
}

// appendSection adds a blank separator line, the label, then the body lines.
func appendSection(lines []string, label string, body ...string) []string {
	lines = append(lines, "", label)
	return append(lines, body...)
}
