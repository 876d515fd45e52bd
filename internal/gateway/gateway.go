package gateway

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/logger"
)

// Gateway guards the provider behind a per-client rate limit, input
// validation and a bounded timeout.
type Gateway struct {
	cfg      *config.Config
	limiter  *Limiter
	provider Provider
	log      *logger.Logger
	timeout  time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLimiter replaces the limiter built from config.
func WithLimiter(l *Limiter) Option {
	return func(g *Gateway) { g.limiter = l }
}

// WithTimeout overrides the provider deadline from config.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New creates a Gateway. A nil provider defaults to a GeminiClient built from cfg.
func New(cfg *config.Config, provider Provider, log *logger.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	if provider == nil {
		provider = NewGeminiClient(cfg.ProviderBaseURL, cfg.ProviderModel)
	}
	g := &Gateway{
		cfg:      cfg,
		provider: provider,
		log:      log,
		timeout:  cfg.RequestTimeoutDuration(),
		limiter: NewLimiter(cfg.RateLimitMax, cfg.RateLimitWindowDuration(),
			WithSweepThreshold(cfg.RateLimitSweepThreshold)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one refinement for clientID. Steps run in a fixed order: rate
// check, validation, credential check, then the bounded provider call.
func (g *Gateway) Generate(ctx context.Context, clientID string, input any) (string, error) {
	d := g.limiter.CheckAndConsume(clientID)
	if !d.Allowed {
		g.log.Info("gateway: rate limited", "client", clientID, "retry_after", d.RetryAfterSeconds())
		return "", errors.NewRateLimited(d.RetryAfterSeconds())
	}

	text, err := g.validate(input)
	if err != nil {
		return "", err
	}

	if g.cfg.APIKey == "" {
		g.log.Error("gateway: provider api key is not configured")
		return "", errors.NewConfiguration("Missing API key")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.provider.Generate(callCtx, g.cfg.APIKey, text)
	if err != nil {
		return "", g.classify(callCtx, clientID, err)
	}

	return Sanitize(out, g.cfg.StripSingleQuotes), nil
}

func (g *Gateway) validate(input any) (string, error) {
	s, ok := input.(string)
	if !ok {
		return "", errors.NewInvalidInput("Input must be a string.")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidInput("Input is required.")
	}
	if utf8.RuneCountInString(s) > g.cfg.MaxInputChars {
		return "", errors.NewInvalidInput("Input is too long.")
	}
	return s, nil
}

func (g *Gateway) classify(callCtx context.Context, clientID string, err error) error {
	if stderrors.Is(callCtx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		g.log.Warn("gateway: provider timed out", "client", clientID, "timeout", g.timeout.String())
		return errors.NewTimeout()
	}
	if errors.Is(err, errors.ErrUpstream) {
		g.log.Warn("gateway: provider rejected request", "client", clientID, "error", err)
		return err
	}
	g.log.Error("gateway: provider call failed", "client", clientID, "error", err)
	return errors.NewInternal(err)
}
