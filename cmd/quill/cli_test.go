package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/db"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/gateway"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/ops"
	"github.com/hpungsan/quill/internal/prompt"
)

// providerFunc adapts a function to gateway.Provider.
type providerFunc func(ctx context.Context, apiKey, input string) (string, error)

func (f providerFunc) Generate(ctx context.Context, apiKey, input string) (string, error) {
	return f(ctx, apiKey, input)
}

// setupTest creates a temporary database, history store and gateway for testing.
func setupTest(t *testing.T, provider gateway.Provider) (*history.Store, *gateway.Gateway) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"

	store := history.New(context.Background(), db.NewKV(database), nil)
	return store, gateway.New(cfg, provider, nil)
}

// runCLI runs args against a fresh app with stdin set to an empty pipe and
// returns captured stdout.
func runCLI(t *testing.T, store *history.Store, gw *gateway.Gateway, args ...string) (string, error) {
	t.Helper()

	oldStdin := os.Stdin
	stdinR, stdinW, _ := os.Pipe()
	stdinW.Close()
	os.Stdin = stdinR
	defer func() { os.Stdin = oldStdin }()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := newCLIApp(store, gw, nil).Run(append([]string{"quill"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

func refiningProvider(out string) gateway.Provider {
	return providerFunc(func(context.Context, string, string) (string, error) {
		return out, nil
	})
}

// TestCLICompile tests the compile command.
func TestCLICompile(t *testing.T) {
	store, gw := setupTest(t, refiningProvider("unused"))

	out, err := runCLI(t, store, gw, "compile", "--goal=Write onboarding docs", "--audience=New hires", "--checklist")
	if err != nil {
		t.Fatalf("compile command failed: %v", err)
	}

	var output ops.CompileOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !strings.Contains(output.Prompt, prompt.LabelAudience+"\nNew hires") {
		t.Errorf("prompt missing audience section:\n%s", output.Prompt)
	}
	if !strings.Contains(output.Prompt, "Include a short checklist") {
		t.Errorf("prompt missing checklist directive:\n%s", output.Prompt)
	}
	if len(store.Entries()) != 0 {
		t.Error("compile must not record history")
	}
}

func TestCLICompile_QualityFlagsOff(t *testing.T) {
	store, gw := setupTest(t, refiningProvider("unused"))

	out, err := runCLI(t, store, gw, "compile", "-g", "g", "--no-clarify", "--no-assumptions")
	if err != nil {
		t.Fatalf("compile command failed: %v", err)
	}
	if strings.Contains(out, prompt.LabelQualityBar) {
		t.Errorf("expected no QUALITY BAR section, got:\n%s", out)
	}
}

func TestCLICompile_Template(t *testing.T) {
	store, gw := setupTest(t, refiningProvider("unused"))

	out, err := runCLI(t, store, gw, "compile", "--template=resume")
	if err != nil {
		t.Fatalf("compile command failed: %v", err)
	}
	if !strings.Contains(out, prompt.LabelTask) {
		t.Errorf("expected template goal to fill TASK, got:\n%s", out)
	}
}

func TestCLICompile_MissingGoal(t *testing.T) {
	store, gw := setupTest(t, refiningProvider("unused"))

	_, err := runCLI(t, store, gw, "compile", "--tone=Warm")
	if err == nil {
		t.Fatal("expected error for missing goal")
	}
	if !strings.Contains(err.Error(), "[INVALID_INPUT]") {
		t.Errorf("error = %q, want INVALID_INPUT code", err.Error())
	}
}

// TestCLIGenerate tests the generate command.
func TestCLIGenerate(t *testing.T) {
	t.Run("refined", func(t *testing.T) {
		store, gw := setupTest(t, refiningProvider(`"You are a docs lead."`))

		out, err := runCLI(t, store, gw, "generate", "--goal=Write docs")
		if err != nil {
			t.Fatalf("generate command failed: %v", err)
		}

		var output ops.GenerateOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !output.Refined || output.Prompt != "You are a docs lead." {
			t.Errorf("output = %+v", output)
		}
		entries := store.Entries()
		if len(entries) != 1 || entries[0].ID != output.EntryID {
			t.Errorf("entries = %+v, want the refined prompt saved", entries)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		store, gw := setupTest(t, providerFunc(func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("connection refused")
		}))

		out, err := runCLI(t, store, gw, "generate", "--goal=Write docs")
		if err != nil {
			t.Fatalf("generate command failed: %v", err)
		}

		var output ops.GenerateOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Refined || output.Notice != ops.FallbackNotice {
			t.Errorf("output = %+v", output)
		}
		if output.Prompt != output.Compiled {
			t.Error("fallback prompt should be the compiled text")
		}
		if len(store.Entries()) != 0 {
			t.Error("fallback must not record history")
		}
	})
}

// TestCLIHistory tests the history subcommands.
func TestCLIHistory(t *testing.T) {
	store, gw := setupTest(t, refiningProvider("unused"))
	for _, c := range []string{"first", "second"} {
		if _, err := store.Append(context.Background(), c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	older := store.Entries()[1]

	t.Run("favorite", func(t *testing.T) {
		out, err := runCLI(t, store, gw, "history", "favorite", older.ID)
		if err != nil {
			t.Fatalf("favorite command failed: %v", err)
		}
		var output ops.ToggleFavoriteOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if !output.Found || output.Entry == nil || !output.Entry.Favorite {
			t.Errorf("output = %+v", output)
		}
	})

	t.Run("favorite without id", func(t *testing.T) {
		_, err := runCLI(t, store, gw, "history", "favorite")
		if err == nil || !strings.Contains(err.Error(), "[INVALID_INPUT]") {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("list favorites", func(t *testing.T) {
		out, err := runCLI(t, store, gw, "history", "list", "--favorites")
		if err != nil {
			t.Fatalf("list command failed: %v", err)
		}
		var output ops.ListHistoryOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(output.Items) != 1 || output.Items[0].Content != "first" {
			t.Errorf("items = %+v", output.Items)
		}
	})

	t.Run("list all", func(t *testing.T) {
		out, err := runCLI(t, store, gw, "history", "list", "--limit=1")
		if err != nil {
			t.Fatalf("list command failed: %v", err)
		}
		var output ops.ListHistoryOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(output.Items) != 1 || output.Items[0].Content != "second" {
			t.Errorf("items = %+v", output.Items)
		}
		if !output.Pagination.HasMore || output.Pagination.Total != 2 {
			t.Errorf("pagination = %+v", output.Pagination)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := runCLI(t, store, gw, "history", "show", older.ID)
		if err != nil {
			t.Fatalf("show command failed: %v", err)
		}
		var entry history.Entry
		if err := json.Unmarshal([]byte(out), &entry); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if entry.Content != "first" {
			t.Errorf("content = %q, want %q", entry.Content, "first")
		}
	})

	t.Run("show unknown", func(t *testing.T) {
		_, err := runCLI(t, store, gw, "history", "show", "01NOPE")
		if err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		out, err := runCLI(t, store, gw, "history", "clear")
		if err != nil {
			t.Fatalf("clear command failed: %v", err)
		}
		var output ops.ClearHistoryOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if output.Cleared != 2 {
			t.Errorf("cleared = %d, want 2", output.Cleared)
		}
		if len(store.Entries()) != 0 {
			t.Error("history should be empty")
		}
	})
}

// TestCLITemplates tests the templates command.
func TestCLITemplates(t *testing.T) {
	out, err := runCLI(t, nil, nil, "templates")
	if err != nil {
		t.Fatalf("templates command failed: %v", err)
	}

	var output ops.ListTemplatesOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(output.Templates) != 5 {
		t.Errorf("templates = %d, want 5", len(output.Templates))
	}
}

func TestOutputError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"typed", errors.NewNotFound("01ABC"), "[NOT_FOUND] history entry not found: 01ABC"},
		{"wrapped", fmt.Errorf("show: %w", errors.NewInvalidInput("id is required")), "[INVALID_INPUT] id is required"},
		{"untyped", fmt.Errorf("boom"), "[INTERNAL] boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputError(tt.err).Error(); got != tt.want {
				t.Errorf("outputError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLICommandsKnown(t *testing.T) {
	app := newCLIApp(nil, nil, nil)
	for _, cmd := range app.Commands {
		if !cliCommands[cmd.Name] {
			t.Errorf("command %q missing from cliCommands dispatch table", cmd.Name)
		}
	}
}
