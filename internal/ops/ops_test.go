package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/hpungsan/quill/internal/db"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/prompt"
)

// newTestStore opens a history store over a fresh sqlite database.
func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return history.New(context.Background(), db.NewKV(database), nil)
}

func seedHistory(t *testing.T, store *history.Store, contents ...string) {
	t.Helper()
	for _, c := range contents {
		if _, err := store.Append(context.Background(), c); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

// fakeRefiner records gateway calls and returns a canned result.
type fakeRefiner struct {
	out      string
	err      error
	calls    int
	clientID string
	input    any
}

func (f *fakeRefiner) Generate(_ context.Context, clientID string, input any) (string, error) {
	f.calls++
	f.clientID = clientID
	f.input = input
	return f.out, f.err
}

func TestResolveFields_NoTemplate(t *testing.T) {
	in := prompt.FieldSet{Goal: "g"}
	got, err := resolveFields("  ", in)
	if err != nil {
		t.Fatalf("resolveFields failed: %v", err)
	}
	if got != in {
		t.Errorf("resolveFields = %+v, want input unchanged", got)
	}
}

func TestResolveFields_TemplateFillsBlanks(t *testing.T) {
	got, err := resolveFields("coding", prompt.FieldSet{Goal: "Fix my race condition", Tone: "  "})
	if err != nil {
		t.Fatalf("resolveFields failed: %v", err)
	}
	if got.Goal != "Fix my race condition" {
		t.Errorf("Goal = %q, want user value", got.Goal)
	}
	if got.Persona != "You are a senior software engineer and mentor." {
		t.Errorf("Persona = %q, want template default", got.Persona)
	}
	if got.Tone != "Clear and concise." {
		t.Errorf("Tone = %q, want template default for blank field", got.Tone)
	}
}

func TestResolveFields_UnknownTemplate(t *testing.T) {
	_, err := resolveFields("poetry", prompt.FieldSet{Goal: "g"})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("resolveFields should return ErrInvalidInput, got: %v", err)
	}
}

func TestListTemplates(t *testing.T) {
	out, err := ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(out.Templates) != 5 {
		t.Errorf("len(Templates) = %d, want 5", len(out.Templates))
	}
	if len(out.Personas) == 0 || len(out.Lengths) == 0 {
		t.Error("Personas and Lengths should not be empty")
	}
	if fmt.Sprint(out.Depths) != "[1 2 3 5]" {
		t.Errorf("Depths = %v", out.Depths)
	}
}
