// Package server exposes dbscope's operations over HTTP for the desktop
// frontend. It is a thin shell: every handler decodes input, calls one
// service operation, and maps the unified error kinds onto status codes.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/errs"
	"github.com/kweron/dbscope/internal/logger"
	"github.com/kweron/dbscope/internal/metadata"
	"github.com/kweron/dbscope/internal/query"
)

// Server holds the wired application services.
type Server struct {
	store  *credentials.Store
	meta   *metadata.Service
	runner *query.Runner
	log    *logger.Logger
}

// New assembles the HTTP server from its services.
func New(store *credentials.Store, meta *metadata.Service, runner *query.Runner, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(nil)
	}
	return &Server{store: store, meta: meta, runner: runner, log: log}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/connections", func(r chi.Router) {
			r.Get("/", s.handleListConnections)
			r.Post("/", s.handleAddConnection)
			r.Post("/test", s.handleTestConnection)
			r.Put("/{id}", s.handleUpdateConnection)
			r.Delete("/{id}", s.handleRemoveConnection)
		})

		r.Route("/databases/{id}", func(r chi.Router) {
			r.Get("/tables", s.handleListTables)
			r.Get("/schema", s.handleGetSchema)
			r.Get("/relationships", s.handleListRelationships)
			r.Post("/query", s.handleQuery)
		})
	})

	return r
}

// requestLogger emits one structured log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("elapsed_ms", int(time.Since(start).Milliseconds())).
			Logger().Info("request")
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the unified error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case errs.ErrKindNotFound:
		status = http.StatusNotFound
	case errs.ErrKindInvalidInput, errs.ErrKindForbiddenQuery:
		status = http.StatusBadRequest
	case errs.ErrKindConnectionFailed:
		status = http.StatusBadGateway
	case errs.ErrKindTimeout:
		status = http.StatusGatewayTimeout
	case errs.ErrKindQueryFailed:
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}
