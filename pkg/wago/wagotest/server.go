// Package wagotest provides an in-process Wago data API double for tests.
package wagotest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/arthur-debert/wowa/pkg/wago"
)

// Request kinds counted by the server.
const (
	KindCheck = "check"
	KindRaw   = "raw"
)

// Server answers version checks and raw payload fetches.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	auras    map[string]wago.RemoteAura
	payloads map[string]string
	counts   map[string]int
	rawSlugs []string
	checked  [][]string
}

// New starts a server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		auras:    map[string]wago.RemoteAura{},
		payloads: map[string]string{},
		counts:   map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddAura registers a remote aura and its encoded payload.
func (s *Server) AddAura(aura wago.RemoteAura, encoded string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auras[aura.Slug] = aura
	s.payloads[aura.Slug] = encoded
}

// Count returns how many requests of kind were served.
func (s *Server) Count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// RawSlugs returns the slugs whose payload was fetched, in order.
func (s *Server) RawSlugs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rawSlugs...)
}

// Checked returns the id lists of every version check.
func (s *Server) Checked() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.checked...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/check/weakauras":
		s.counts[KindCheck]++
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.checked = append(s.checked, req.IDs)
		out := []wago.RemoteAura{}
		for _, id := range req.IDs {
			if a, ok := s.auras[id]; ok {
				out = append(out, a)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodGet && r.URL.Path == "/api/raw/encoded":
		s.counts[KindRaw]++
		slug := r.URL.Query().Get("id")
		s.rawSlugs = append(s.rawSlugs, slug)
		payload, ok := s.payloads[slug]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	default:
		http.NotFound(w, r)
	}
}
