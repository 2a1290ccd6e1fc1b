package credentials

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kweron/dbscope/internal/errs"
)

// Store is an in-memory credential store keyed by connection id.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	creds map[string]Credentials
}

// NewStore returns an empty credential store.
func NewStore() *Store {
	return &Store{creds: make(map[string]Credentials)}
}

// Add saves new credentials. Adding an id that already exists is an
// invalid-input error; use Update to replace.
func (s *Store) Add(c Credentials) error {
	if c.ID == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection id must not be empty")
	}
	if !c.Dialect.Valid() {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported dialect: %q", c.Dialect))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[c.ID]; ok {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("connection already exists: %s", c.ID))
	}
	s.creds[c.ID] = c
	return nil
}

// Get returns the credentials for the given id. An unknown id is a
// not-found error; callers distinguish this from query failures.
func (s *Store) Get(id string) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[id]
	if !ok {
		return Credentials{}, errs.New(errs.ErrKindNotFound, fmt.Sprintf("connection not found: %s", id))
	}
	return c, nil
}

// List returns all stored credentials, ordered by id for stable output.
func (s *Store) List() []Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Credentials, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update replaces existing credentials.
func (s *Store) Update(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[c.ID]; !ok {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("connection not found: %s", c.ID))
	}
	s.creds[c.ID] = c
	return nil
}

// Remove deletes credentials by id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[id]; !ok {
		return errs.New(errs.ErrKindNotFound, fmt.Sprintf("connection not found: %s", id))
	}
	delete(s.creds, id)
	return nil
}
