// Package web serves the local glossary UI.
package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewHandler builds the routed UI handler for a.
func NewHandler(a *app.App, version string) http.Handler {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	h := &Handlers{
		app:      a,
		renderer: NewRenderer(templateSub, version, a.Log.With("component", "web")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/glossary", http.StatusFound)
	})
	mux.HandleFunc("GET /glossary", h.HandleGlossary)
	mux.HandleFunc("POST /glossary/edit", h.HandleBeginEdit)
	mux.HandleFunc("POST /glossary/stage", h.HandleStage)
	mux.HandleFunc("POST /glossary/save", h.HandleSave)
	mux.HandleFunc("POST /glossary/discard", h.HandleDiscard)
	mux.HandleFunc("POST /glossary/undo", h.HandleUndo)
	mux.HandleFunc("POST /glossary/redo", h.HandleRedo)
	mux.HandleFunc("POST /glossary/clear", h.HandleClear)
	mux.HandleFunc("GET /lookup", h.HandleLookup)
	mux.HandleFunc("POST /lookup/save", h.HandleLookupSave)
	mux.HandleFunc("GET /export.tsv", h.HandleExport)
	mux.Handle("GET /metrics", a.Metrics.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(http.NewCrossOriginProtection().Handler(mux))
}

// NewServer creates the HTTP server for the glossary UI.
func NewServer(a *app.App, version, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandler(a, version),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and shuts it down on SIGINT/SIGTERM or when
// ctx ends.
func Run(ctx context.Context, a *app.App, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.Log.Info("glossary UI running", "url", "http://"+srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0:") || strings.HasPrefix(srv.Addr, "[::]:") || strings.HasPrefix(srv.Addr, ":") {
		a.Log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
