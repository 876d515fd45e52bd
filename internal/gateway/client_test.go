package gateway

import (
	"net/http/httptest"
	"testing"
)

func TestClientID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "10.0.0.1"},
		{"forwarded trimmed", map[string]string{"X-Forwarded-For": "  10.0.0.9  "}, "10.0.0.9"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "10.0.0.5"}, "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.5"}, "10.0.0.5"},
		{"blank forwarded falls through", map[string]string{"X-Forwarded-For": " , 10.0.0.2", "X-Real-IP": "10.0.0.5"}, "10.0.0.5"},
		{"none", nil, AnonymousClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/generate", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientID(r); got != tt.want {
				t.Errorf("ClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}
