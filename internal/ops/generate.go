package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/logger"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	CompileInput
	ClientID string `json:"-"` // default: LocalClient
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Prompt   string `json:"prompt"`
	Compiled string `json:"compiled"`
	Refined  bool   `json:"refined"`
	Notice   string `json:"notice,omitempty"`
	EntryID  string `json:"entry_id,omitempty"`
}

// Generate compiles the field set, refines it through the gateway and records
// the refined prompt in history. Any gateway failure, including an empty
// refinement, degrades to the compiled text with FallbackNotice and leaves
// history untouched. Only goal validation errors are returned.
func Generate(ctx context.Context, store *history.Store, refiner Refiner, log *logger.Logger, input GenerateInput) (*GenerateOutput, error) {
	if log == nil {
		log = logger.Nop()
	}

	compiled, err := Compile(store, input.CompileInput)
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		clientID = LocalClient
	}

	out := &GenerateOutput{Prompt: compiled.Prompt, Compiled: compiled.Prompt}

	refined, err := refiner.Generate(ctx, clientID, compiled.Prompt)
	if err == nil && strings.TrimSpace(refined) == "" {
		err = errors.NewUpstream("empty refinement")
	}
	if err != nil {
		log.Warn("refinement unavailable, using compiled prompt", "client", clientID, "error", err)
		out.Notice = FallbackNotice
		return out, nil
	}

	out.Prompt = refined
	out.Refined = true

	if store != nil {
		entries, err := store.Append(ctx, refined)
		if err != nil {
			return nil, err
		}
		out.EntryID = entries[0].ID
	}
	return out, nil
}
