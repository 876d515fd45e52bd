package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/logger"
	"github.com/hpungsan/quill/internal/ops"
	"github.com/hpungsan/quill/internal/prompt"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store   *history.Store
	refiner ops.Refiner
	log     *logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *history.Store, refiner ops.Refiner, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{store: store, refiner: refiner, log: log}
}

// Request types for each tool

// CompileRequest represents the arguments for prompt_compile and prompt_generate.
// Quality flags are pointers so an omitted flag keeps its studio default.
type CompileRequest struct {
	Template        string `json:"template,omitempty"`
	Goal            string `json:"goal,omitempty"`
	Persona         string `json:"persona,omitempty"`
	Audience        string `json:"audience,omitempty"`
	Context         string `json:"context,omitempty"`
	References      string `json:"references,omitempty"`
	Constraints     string `json:"constraints,omitempty"`
	Format          string `json:"format,omitempty"`
	Tone            string `json:"tone,omitempty"`
	Length          string `json:"length,omitempty"`
	Language        string `json:"language,omitempty"`
	SuccessCriteria string `json:"success_criteria,omitempty"`

	AskClarifying    *bool `json:"ask_clarifying,omitempty"`
	StateAssumptions *bool `json:"state_assumptions,omitempty"`
	IncludeChecklist *bool `json:"include_checklist,omitempty"`

	IncludeHistory bool `json:"include_history,omitempty"`
	HistoryDepth   int  `json:"history_depth,omitempty"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	FavoritesOnly bool `json:"favorites_only,omitempty"`
	Limit         int  `json:"limit,omitempty"`
	Offset        int  `json:"offset,omitempty"`
}

// HistoryIDRequest represents the arguments for history_show and history_favorite.
type HistoryIDRequest struct {
	ID string `json:"id"`
}

// toCompileInput maps flat tool arguments onto the ops input.
func (r CompileRequest) toCompileInput() ops.CompileInput {
	flags := prompt.DefaultQualityFlags()
	if r.AskClarifying != nil {
		flags.AskClarifying = *r.AskClarifying
	}
	if r.StateAssumptions != nil {
		flags.StateAssumptions = *r.StateAssumptions
	}
	if r.IncludeChecklist != nil {
		flags.IncludeChecklist = *r.IncludeChecklist
	}

	return ops.CompileInput{
		Template: r.Template,
		Fields: prompt.FieldSet{
			Goal:            r.Goal,
			Persona:         r.Persona,
			Audience:        r.Audience,
			Context:         r.Context,
			References:      r.References,
			Constraints:     r.Constraints,
			Format:          r.Format,
			Tone:            r.Tone,
			Length:          r.Length,
			Language:        r.Language,
			SuccessCriteria: r.SuccessCriteria,
		},
		Flags:          &flags,
		IncludeHistory: r.IncludeHistory,
		HistoryDepth:   r.HistoryDepth,
	}
}

// HandleCompile handles the prompt_compile tool call.
func (h *Handlers) HandleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Compile(h.store, input.toCompileInput())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGenerate handles the prompt_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Generate(ctx, h.store, h.refiner, h.log, ops.GenerateInput{
		CompileInput: input.toCompileInput(),
		ClientID:     ops.LocalClient,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.ListHistory(h.store, ops.ListHistoryInput{
		FavoritesOnly: input.FavoritesOnly,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryShow handles the history_show tool call.
func (h *Handlers) HandleHistoryShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.ShowHistory(h.store, ops.ShowHistoryInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryFavorite handles the history_favorite tool call.
func (h *Handlers) HandleHistoryFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.ToggleFavorite(ctx, h.store, ops.ToggleFavoriteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryClear handles the history_clear tool call.
func (h *Handlers) HandleHistoryClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearHistory(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateList handles the template_list tool call.
func (h *Handlers) HandleTemplateList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListTemplates()
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error messages and details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var qErr *errors.QuillError
	if stderrors.As(err, &qErr) && qErr.Code != errors.ErrInternal && qErr.Code != errors.ErrStorage {
		message := qErr.Message
		// keep wrapper context such as "template: ..." from fmt.Errorf
		if prefix := strings.TrimSuffix(err.Error(), qErr.Error()); prefix != err.Error() && prefix != "" {
			message = prefix + qErr.Message
		}
		errorObj := map[string]any{
			"code":    qErr.Code,
			"message": message,
			"status":  qErr.Status,
		}
		if qErr.Details != nil {
			errorObj["details"] = qErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
