package history

import (
	"bytes"
	"encoding/json"
	"strings"
)

// shape is the discriminant of one stored element.
type shape int

const (
	shapeOther shape = iota
	shapeString
	shapeObject
)

func classify(raw json.RawMessage) shape {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return shapeOther
	}
	switch trimmed[0] {
	case '"':
		return shapeString
	case '{':
		return shapeObject
	}
	return shapeOther
}

// Normalize decodes a stored history document, tolerating every shape earlier
// versions wrote: bare strings, objects carrying "content", and anything else.
// It never fails; unreadable input yields an empty slice and is left in place for
// the next write to replace. changed reports whether the canonical encoding differs
// from what was stored (ids minted, entries dropped, fields coerced), so callers can
// write it back.
func Normalize(data []byte, newID func() string) (entries []Entry, changed bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return []Entry{}, false
	}

	entries = make([]Entry, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		e, coerced := decodeEntry(item, newID)
		if coerced {
			changed = true
		}
		if strings.TrimSpace(e.Content) == "" {
			changed = true
			continue
		}
		if seen[e.ID] {
			e.ID = newID()
			changed = true
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	return entries, changed
}

// decodeEntry maps one element onto an Entry. The "other" arm always yields an
// empty placeholder, which Normalize then drops.
func decodeEntry(raw json.RawMessage, newID func() string) (Entry, bool) {
	switch classify(raw) {
	case shapeString:
		var content string
		if err := json.Unmarshal(raw, &content); err != nil {
			return Entry{ID: newID()}, true
		}
		return Entry{ID: newID(), Content: content}, true

	case shapeObject:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Entry{ID: newID()}, true
		}
		contentRaw, ok := fields["content"]
		if !ok {
			return Entry{ID: newID()}, true
		}

		var e Entry
		coerced := false

		if err := json.Unmarshal(contentRaw, &e.Content); err != nil || classify(contentRaw) != shapeString {
			e.Content = ""
			coerced = true
		}

		var id string
		if err := json.Unmarshal(fields["id"], &id); err == nil && strings.TrimSpace(id) != "" {
			e.ID = id
		} else {
			e.ID = newID()
			coerced = true
		}

		favRaw := bytes.TrimSpace(fields["favorite"])
		e.Favorite = truthy(favRaw)
		if string(favRaw) != "true" && string(favRaw) != "false" {
			coerced = true
		}
		return e, coerced
	}
	return Entry{ID: newID()}, true
}

// truthy applies JavaScript boolean coercion to a JSON value, matching how the
// favorite flag was historically written.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return true
}
