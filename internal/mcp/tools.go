package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// fieldSetOptions are the shared Field Set and continuity arguments of the
// compile and generate tools.
func fieldSetOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("goal", mcp.Description("What the AI should do. Required unless a template supplies it.")),
		mcp.WithString("template", mcp.Description("Built-in template id whose values fill blank fields"),
			mcp.Enum("blog", "coding", "marketing", "startup", "resume")),
		mcp.WithString("persona", mcp.Description("Role line; defaults to a generic assistant")),
		mcp.WithString("audience", mcp.Description("Target audience")),
		mcp.WithString("context", mcp.Description("Background the AI should know")),
		mcp.WithString("references", mcp.Description("Reference material to draw on")),
		mcp.WithString("constraints", mcp.Description("Rules the output must follow")),
		mcp.WithString("format", mcp.Description("Output format")),
		mcp.WithString("tone", mcp.Description("Tone of voice")),
		mcp.WithString("length", mcp.Description("Desired length")),
		mcp.WithString("language", mcp.Description("Output language")),
		mcp.WithString("success_criteria", mcp.Description("How to judge the result")),
		mcp.WithBoolean("ask_clarifying", mcp.Description("Ask up to 3 clarifying questions (default true)")),
		mcp.WithBoolean("state_assumptions", mcp.Description("State assumptions explicitly (default true)")),
		mcp.WithBoolean("include_checklist", mcp.Description("Include a checklist before the output (default false)")),
		mcp.WithBoolean("include_history", mcp.Description("Fold recent history entries in as prior outputs")),
		mcp.WithNumber("history_depth", mcp.Description("How many recent entries to include, 1-30 (default 3)")),
	}
}

var compileToolDef = mcp.NewTool("prompt_compile",
	append([]mcp.ToolOption{
		mcp.WithDescription("Compile a structured prompt from typed fields. Deterministic; no network call and no history change."),
	}, fieldSetOptions()...)...,
)

var generateToolDef = mcp.NewTool("prompt_generate",
	append([]mcp.ToolOption{
		mcp.WithDescription("Compile a structured prompt, refine it with the configured provider and save the refined prompt to history. Falls back to the compiled prompt with a notice when refinement is unavailable."),
	}, fieldSetOptions()...)...,
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List saved prompts, most recent first."),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorite entries")),
	mcp.WithNumber("limit", mcp.Description("Max entries (default 30)")),
	mcp.WithNumber("offset", mcp.Description("Entries to skip")),
)

var historyShowToolDef = mcp.NewTool("history_show",
	mcp.WithDescription("Show one saved prompt."),
	mcp.WithString("id", mcp.Required(), mcp.Description("History entry id")),
)

var historyFavoriteToolDef = mcp.NewTool("history_favorite",
	mcp.WithDescription("Toggle the favorite flag of a saved prompt. Unknown ids leave history unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("History entry id")),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Delete every saved prompt."),
)

var templateListToolDef = mcp.NewTool("template_list",
	mcp.WithDescription("List built-in templates, personas, lengths and history depths."),
)
