// Package cursetest provides an in-process CurseForge API double for tests.
package cursetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/arthur-debert/wowa/pkg/curse"
)

// Request kinds counted by the server.
const (
	KindSearch   = "search"
	KindFile     = "file"
	KindDownload = "download"
)

// Server serves mods, files and archives registered by the test.
// Search matches every mod whose slug starts with the requested slug, so
// callers must still pick the exact match.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	mods     []curse.Mod
	files    map[int]curse.File
	archives map[int][]byte
	counts   map[string]int
	failures map[string]int
	tokens   []string
}

// New starts a server that is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		files:    map[int]curse.File{},
		archives: map[int][]byte{},
		counts:   map[string]int{},
		failures: map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddMod registers a mod returned by search, replacing a mod with the
// same id.
func (s *Server) AddMod(mod curse.Mod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mods {
		if s.mods[i].ID == mod.ID {
			s.mods[i] = mod
			return
		}
	}
	s.mods = append(s.mods, mod)
}

// AddFile registers file metadata and the archive served for it. The
// file's DownloadURL is pointed at this server unless archive is nil.
func (s *Server) AddFile(file curse.File, archive []byte) curse.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if archive != nil {
		file.DownloadURL = fmt.Sprintf("%s/download/%d.zip", s.URL, file.ID)
		s.archives[file.ID] = archive
	}
	s.files[file.ID] = file
	return file
}

// FailNext makes the next n requests of kind fail with status 503.
func (s *Server) FailNext(kind string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[kind] = n
}

// Count returns how many requests of kind were served.
func (s *Server) Count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// Tokens returns the x-api-key values seen on API requests.
func (s *Server) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, id := classify(r.URL.Path)
	if kind == "" {
		http.NotFound(w, r)
		return
	}
	s.counts[kind]++
	if kind != KindDownload {
		s.tokens = append(s.tokens, r.Header.Get("x-api-key"))
	}
	if s.failures[kind] > 0 {
		s.failures[kind]--
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch kind {
	case KindSearch:
		slug := r.URL.Query().Get("slug")
		typeID, _ := strconv.Atoi(r.URL.Query().Get("gameVersionTypeId"))
		var out []curse.Mod
		for _, m := range s.mods {
			if strings.HasPrefix(m.Slug, slug) && hasType(m, typeID) {
				out = append(out, m)
			}
		}
		writeJSON(w, map[string]interface{}{"data": out})
	case KindFile:
		file, ok := s.files[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]interface{}{"data": file})
	case KindDownload:
		data, ok := s.archives[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}
}

func hasType(m curse.Mod, typeID int) bool {
	if typeID == 0 || len(m.LatestFilesIndexes) == 0 {
		return true
	}
	for _, fi := range m.LatestFilesIndexes {
		if fi.GameVersionTypeID == typeID {
			return true
		}
	}
	return false
}

// classify maps /v1/mods/search, /v1/mods/{mod}/files/{file} and
// /download/{file}.zip to a kind and file id.
func classify(p string) (string, int) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "v1" && parts[1] == "mods" && parts[2] == "search":
		return KindSearch, 0
	case len(parts) == 5 && parts[0] == "v1" && parts[1] == "mods" && parts[3] == "files":
		id, err := strconv.Atoi(parts[4])
		if err != nil {
			return "", 0
		}
		return KindFile, id
	case len(parts) == 2 && parts[0] == "download":
		id, err := strconv.Atoi(strings.TrimSuffix(parts[1], ".zip"))
		if err != nil {
			return "", 0
		}
		return KindDownload, id
	}
	return "", 0
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
