package gateway

import (
	"net/http"
	"strings"
)

// AnonymousClient is the key shared by requests carrying no identifying header.
const AnonymousClient = "anonymous"

// ClientID derives the rate-limit key from the first X-Forwarded-For entry, then
// X-Real-IP. Both headers are client-supplied and unverified, so the key can be
// spoofed; there is no trusted-proxy allowlist.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if id := strings.TrimSpace(first); id != "" {
			return id
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	return AnonymousClient
}
