package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/quill/internal/gateway"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// shutdownTimeout bounds graceful shutdown after a signal.
const shutdownTimeout = 5 * time.Second

// NewServer creates and configures the HTTP server for the Quill studio and JSON API.
func NewServer(store *history.Store, gw *gateway.Gateway, log *logger.Logger, version, bind string, port int) (*http.Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	renderer, err := NewRenderer(templateSub, version, log)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		store:    store,
		gateway:  gw,
		log:      log,
		renderer: renderer,
	}

	mux := http.NewServeMux()
	routes(mux, h)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	mw := NewMiddleware()
	mw.Use(requestID)
	mw.Use(requestLogger(log))
	mw.Use(recoverer(log))
	mw.Use(securityHeaders)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           mw.Apply(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// routes registers every page and API route using Go 1.22+ pattern syntax.
func routes(mux *http.ServeMux, h *Handlers) {
	// Studio UI
	mux.HandleFunc("GET /{$}", h.HandleStudio)
	mux.HandleFunc("POST /{$}", h.HandleStudioSubmit)
	mux.HandleFunc("GET /history/{id}", h.HandleHistoryDetail)
	mux.HandleFunc("POST /history/{id}/favorite", h.HandleHistoryFavorite)
	mux.HandleFunc("POST /history/clear", h.HandleHistoryClear)

	// JSON API
	mux.Handle("POST /api/generate", h.gateway)
	mux.HandleFunc("POST /api/compile", h.HandleAPICompile)
	mux.HandleFunc("POST /api/studio/generate", h.HandleAPIGenerate)
	mux.HandleFunc("GET /api/history", h.HandleAPIHistory)
	mux.HandleFunc("POST /api/history/{id}/favorite", h.HandleAPIFavorite)
	mux.HandleFunc("DELETE /api/history", h.HandleAPIClear)
	mux.HandleFunc("GET /api/templates", h.HandleAPITemplates)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Run starts the HTTP server and shuts it down gracefully on SIGINT/SIGTERM
// or when ctx is cancelled.
func Run(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("quill studio running", "url", "http://"+srv.Addr)
		if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
			log.Warn("server is binding to all interfaces and may be accessible from the network")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
