// Package nugettest provides an in-process NuGet v3 registry for tests.
//
// The server answers the two documents used by license lookups: the
// registration leaf and the catalog entry it points to. Packages are
// registered up front; anything else is a 404.
//
//	reg := nugettest.NewServer(nugettest.Package{
//	    ID: "Newtonsoft.Json", Version: "12.0.1",
//	    LicenseURL: "https://licenses.nuget.org/MIT",
//	})
//	defer reg.Close()
//
//	client := nuget.NewClient(nuget.Options{APIURL: reg.URL})
package nugettest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Package is one registered package version. Version is the normalized
// (registration) form.
type Package struct {
	ID                string
	Version           string
	LicenseURL        string
	LicenseExpression string
	Description       string
}

// Server is a fake registry backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.RWMutex
	packages map[string]Package
	status   map[string]int
	broken   map[string]bool
	latency  time.Duration

	requests atomic.Int64
}

// NewServer starts a registry serving pkgs.
func NewServer(pkgs ...Package) *Server {
	s := &Server{
		packages: make(map[string]Package),
		status:   make(map[string]int),
		broken:   make(map[string]bool),
	}
	for _, p := range pkgs {
		s.Add(p)
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Get("/v3/registration3/{id}/{leaf}", s.handleLeaf)
	r.Get("/v3/catalog0/data/{id}/{file}", s.handleCatalog)

	s.Server = httptest.NewServer(r)
	return s
}

// Add registers p, replacing an existing registration of the same id and version.
func (s *Server) Add(p Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[key(p.ID, p.Version)] = p
}

// FailWith makes every request for id answer with the given status code.
func (s *Server) FailWith(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[strings.ToLower(id)] = status
}

// Corrupt makes the registration leaf of id an invalid JSON document.
func (s *Server) Corrupt(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[strings.ToLower(id)] = true
}

// SetLatency delays every response by d, or until the request is cancelled.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// CatalogURL returns the catalog entry URL the leaf of id/version points to.
func (s *Server) CatalogURL(id, version string) string {
	return s.URL + "/v3/catalog0/data/" + strings.ToLower(id) + "/" + strings.ToLower(version) + ".json"
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		s.mu.RLock()
		d := s.latency
		s.mu.RUnlock()
		if d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLeaf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	version, ok := strings.CutSuffix(chi.URLParam(r, "leaf"), ".json")
	if !ok {
		http.NotFound(w, r)
		return
	}

	p, ok := s.lookup(w, r, id, version)
	if !ok {
		return
	}

	s.mu.RLock()
	broken := s.broken[strings.ToLower(id)]
	s.mu.RUnlock()
	if broken {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"catalogEntry": `))
		return
	}

	writeJSON(w, map[string]any{
		"@id":          s.URL + r.URL.Path,
		"catalogEntry": s.CatalogURL(p.ID, p.Version),
		"listed":       true,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	version, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok {
		http.NotFound(w, r)
		return
	}

	p, ok := s.lookup(w, r, id, version)
	if !ok {
		return
	}

	doc := map[string]any{
		"id":          p.ID,
		"version":     p.Version,
		"description": p.Description,
		"licenseUrl":  p.LicenseURL,
	}
	if p.LicenseExpression != "" {
		doc["licenseExpression"] = p.LicenseExpression
	}
	writeJSON(w, doc)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id, version string) (Package, bool) {
	s.mu.RLock()
	status, failing := s.status[strings.ToLower(id)]
	p, found := s.packages[key(id, version)]
	s.mu.RUnlock()

	switch {
	case failing:
		w.WriteHeader(status)
		return Package{}, false
	case !found:
		http.NotFound(w, r)
		return Package{}, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func key(id, version string) string {
	return strings.ToLower(id) + "/" + strings.ToLower(version)
}
