package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hpungsan/quill/internal/errors"
)

// maxBodyBytes bounds a generate request body.
const maxBodyBytes = 64 << 10

// genericServerError is the only message shown for unclassified failures.
const genericServerError = "Server error"

type generateRequest struct {
	Input any `json:"input"`
}

type generateResponse struct {
	Prompt string `json:"prompt"`
}

// ServeHTTP handles POST /api/generate.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// undecodable bodies still count against the limit and fail validation
		req.Input = nil
	}

	out, err := g.Generate(r.Context(), ClientID(r), req.Input)
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, generateResponse{Prompt: out})
}

// WriteError maps err to a JSON error body. Untyped and internal errors are
// reduced to a generic message.
func WriteError(w http.ResponseWriter, err error) {
	qErr := errors.As(err)
	msg := qErr.Message
	if qErr.Code == errors.ErrInternal || qErr.Code == errors.ErrStorage {
		msg = genericServerError
	}
	if qErr.Code == errors.ErrRateLimited {
		w.Header().Set("Retry-After", strconv.Itoa(errors.RetryAfter(qErr)))
	}
	writeJSON(w, qErr.Status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
