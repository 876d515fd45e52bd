package history

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/logger"
	"github.com/hpungsan/quill/internal/prompt"
)

const (
	// StorageKey is the byte store key holding the history document.
	StorageKey = "prompt-history"

	// MaxItems is the retention cap; older entries are dropped on append.
	MaxItems = 30
)

// Entry is one past generated output.
type Entry struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Favorite bool   `json:"favorite"`
}

// ByteStore is a durable, untyped key/value store.
type ByteStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store serves the history list. The in-memory view is authoritative for the
// process; every mutation is written through to the byte store on a best-effort
// basis and storage failures are logged, never returned.
type Store struct {
	mu      sync.Mutex
	bs      ByteStore
	log     *logger.Logger
	newID   func() string
	entries []Entry
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a Store over bs and loads the persisted history.
func New(ctx context.Context, bs ByteStore, log *logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		bs:    bs,
		log:   log.With("component", "history"),
		newID: generateULID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// generateULID generates a new ULID.
func generateULID() string {
	return ulid.Make().String()
}

// Load re-reads the byte store, normalizes legacy shapes and replaces the
// in-memory view. Read or parse failures produce an empty history.
func (s *Store) Load(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.bs.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("history read failed, starting empty", "error", err)
		s.entries = []Entry{}
		return s.snapshot()
	}
	if !ok || raw == "" {
		s.entries = []Entry{}
		return s.snapshot()
	}

	entries, changed := Normalize([]byte(raw), s.newID)
	s.entries = entries
	if changed {
		// Pin freshly minted ids so later loads see the same identities.
		s.persist(ctx)
	}
	return s.snapshot()
}

// Entries returns a snapshot of the current history, most recent first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Append prepends content as a new entry and enforces the retention cap.
func (s *Store) Append(ctx context.Context, content string) ([]Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.NewInvalidInput("content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, min(len(s.entries)+1, MaxItems))
	next = append(next, Entry{ID: s.newID(), Content: content})
	next = append(next, s.entries...)
	if len(next) > MaxItems {
		next = next[:MaxItems]
	}
	s.entries = next
	s.persist(ctx)
	return s.snapshot(), nil
}

// ToggleFavorite flips the favorite flag of the entry with id. Unknown ids are a no-op.
func (s *Store) ToggleFavorite(ctx context.Context, id string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Favorite = !s.entries[i].Favorite
			found = true
			break
		}
	}
	if found {
		s.persist(ctx)
	}
	return s.snapshot()
}

// Clear drops every entry from memory and from the byte store.
func (s *Store) Clear(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []Entry{}
	if err := s.bs.Remove(ctx, StorageKey); err != nil {
		s.log.Warn("history clear not persisted", "error", err)
	}
	return s.snapshot()
}

// Snippets returns continuity snippets built from the depth most recent entries.
func (s *Store) Snippets(depth int) []string {
	s.mu.Lock()
	contents := make([]string, len(s.entries))
	for i, e := range s.entries {
		contents[i] = e.Content
	}
	s.mu.Unlock()
	return prompt.Snippets(contents, depth)
}

// persist writes the canonical encoding. Caller holds mu.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.log.Warn("history encode failed", "error", err)
		return
	}
	if err := s.bs.Set(ctx, StorageKey, string(data)); err != nil {
		s.log.Warn("history write not persisted", "error", err)
	}
}

// snapshot copies entries so callers never alias the store's slice. Caller holds mu.
func (s *Store) snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
