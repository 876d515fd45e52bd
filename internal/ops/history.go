package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/history"
)

// ListHistoryInput contains parameters for the ListHistory operation.
type ListHistoryInput struct {
	FavoritesOnly bool `json:"favorites_only,omitempty"`
	Limit         int  `json:"limit,omitempty"`  // default: 30, max: 30
	Offset        int  `json:"offset,omitempty"` // default: 0
}

// ListHistoryOutput contains the result of the ListHistory operation.
type ListHistoryOutput struct {
	Items      []history.Entry `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// ListHistory returns history entries, most recent first.
func ListHistory(store *history.Store, input ListHistoryInput) (*ListHistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	all := store.Entries()
	if input.FavoritesOnly {
		favs := make([]history.Entry, 0, len(all))
		for _, e := range all {
			if e.Favorite {
				favs = append(favs, e)
			}
		}
		all = favs
	}

	total := len(all)
	start := min(offset, total)
	end := min(start+limit, total)

	return &ListHistoryOutput{
		Items: all[start:end],
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
	}, nil
}

// ToggleFavoriteInput contains parameters for the ToggleFavorite operation.
type ToggleFavoriteInput struct {
	ID string `json:"id"`
}

// ToggleFavoriteOutput contains the result of the ToggleFavorite operation.
type ToggleFavoriteOutput struct {
	Found bool            `json:"found"`
	Entry *history.Entry  `json:"entry,omitempty"`
	Items []history.Entry `json:"items"`
}

// ToggleFavorite flips an entry's favorite flag. An unknown id leaves history
// unchanged and reports Found=false.
func ToggleFavorite(ctx context.Context, store *history.Store, input ToggleFavoriteInput) (*ToggleFavoriteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidInput("id is required")
	}

	items := store.ToggleFavorite(ctx, id)
	out := &ToggleFavoriteOutput{Items: items}
	for i := range items {
		if items[i].ID == id {
			out.Found = true
			out.Entry = &items[i]
			break
		}
	}
	return out, nil
}

// ShowHistoryInput contains parameters for the ShowHistory operation.
type ShowHistoryInput struct {
	ID string `json:"id"`
}

// ShowHistory returns one entry or a 404.
func ShowHistory(store *history.Store, input ShowHistoryInput) (*history.Entry, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidInput("id is required")
	}
	e, ok := store.Get(id)
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	return &e, nil
}

// ClearHistoryOutput contains the result of the ClearHistory operation.
type ClearHistoryOutput struct {
	Cleared int `json:"cleared"`
}

// ClearHistory removes every entry.
func ClearHistory(ctx context.Context, store *history.Store) (*ClearHistoryOutput, error) {
	n := len(store.Entries())
	store.Clear(ctx)
	return &ClearHistoryOutput{Cleared: n}, nil
}
