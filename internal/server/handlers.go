package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/errs"
)

// --- connection management ---

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns := s.store.List()
	// Passwords never leave the process.
	for i := range conns {
		conns[i].Password = ""
	}
	writeJSON(w, http.StatusOK, conns)
}

func (s *Server) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var c credentials.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err))
		return
	}
	if err := s.store.Add(c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID})
}

func (s *Server) handleUpdateConnection(w http.ResponseWriter, r *http.Request) {
	var c credentials.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err))
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := s.store.Update(c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": c.ID})
}

func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var c credentials.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err))
		return
	}
	result, err := s.meta.TestConnection(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- metadata ---

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.meta.ListTables(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tables := q["table"]
	namespace := q.Get("namespace")

	schemas, err := s.meta.GetSchema(r.Context(), chi.URLParam(r, "id"), tables, namespace)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schemas)
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.meta.ListRelationships(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

// --- query execution ---

type queryRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err))
		return
	}
	result, err := s.runner.Execute(r.Context(), chi.URLParam(r, "id"), req.SQL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
