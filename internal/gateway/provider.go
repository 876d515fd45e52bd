package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
)

// Provider turns a raw idea into a refined prompt.
type Provider interface {
	Generate(ctx context.Context, apiKey, input string) (string, error)
}

// Frame wraps the user's idea in the refinement instruction sent upstream.
func Frame(input string) string {
	return "You are an expert prompt engineer.\n" +
		"Generate a high-quality professional AI prompt.\n\n" +
		"User idea:\n" + input + "\n\n" +
		"Return ONLY the final prompt."
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.client = c }
}

// GeminiClient calls the generateContent endpoint. It never retries; the
// deadline comes from the caller's context.
type GeminiClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewGeminiClient creates a client for baseURL and model.
func NewGeminiClient(baseURL, model string, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiClient) endpoint(apiKey string) string {
	return fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(apiKey))
}

// Generate sends one framed single-turn request and returns the first
// candidate's text, or "" when the response carries none.
func (g *GeminiClient) Generate(ctx context.Context, apiKey, input string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: Frame(input)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp geminiErrorResponse
		_ = json.Unmarshal(respBody, &errResp)
		return "", errors.NewUpstream(errResp.Error.Message)
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("gemini: unmarshal response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}
