package prompt

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("  short  ", 10); got != "short" {
		t.Errorf("Truncate = %q, want %q", got, "short")
	}

	long := strings.Repeat("a", 1205)
	got := Truncate(long, SnippetLimit)
	if got != strings.Repeat("a", 1200)+"..." {
		t.Errorf("Truncate length = %d, want 1203", len(got))
	}

	exact := strings.Repeat("b", 1200)
	if got := Truncate(exact, SnippetLimit); got != exact {
		t.Error("text at the limit should not be marked")
	}

	// multi-byte characters count once
	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Truncate = %q, want %q", got, "héllo...")
	}
}

func TestClampDepth(t *testing.T) {
	tests := []struct{ in, want int }{
		{-4, 1}, {0, 1}, {1, 1}, {3, 3}, {30, 30}, {31, 30}, {500, 30},
	}
	for _, tt := range tests {
		if got := ClampDepth(tt.in); got != tt.want {
			t.Errorf("ClampDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSnippets(t *testing.T) {
	contents := []string{"newest ", " middle", "oldest"}

	got := Snippets(contents, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != "[1] newest" || got[1] != "[2] middle" {
		t.Errorf("Snippets = %q", got)
	}

	if got := Snippets(contents, 10); len(got) != 3 {
		t.Errorf("depth beyond history: len = %d, want 3", len(got))
	}
	if got := Snippets(contents, 0); len(got) != 1 {
		t.Errorf("depth 0 clamps to 1: len = %d", len(got))
	}
	if got := Snippets(nil, 3); len(got) != 0 {
		t.Errorf("empty history: len = %d, want 0", len(got))
	}
}

func TestSnippets_TruncatesEach(t *testing.T) {
	got := Snippets([]string{strings.Repeat("x", 2000)}, 1)
	want := "[1] " + strings.Repeat("x", SnippetLimit) + "..."
	if got[0] != want {
		t.Errorf("snippet not truncated: len = %d", len(got[0]))
	}
}
