package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFS embed.FS

// Handler returns the HTTP handler serving the page, the WebSocket
// endpoint, /state, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.middlewares...)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/state", s.handleState)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/*", http.FileServer(http.FS(static)))
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	source := s.state
	s.mu.RUnlock()

	if source == nil {
		http.Error(w, "no app attached", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(source().Data()); err != nil {
		s.logger.Warn("state encode failed", "error", err)
	}
}
