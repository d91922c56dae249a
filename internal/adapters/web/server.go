// Package web serves the matcher over HTTP: a small JSON API plus a websocket
// that streams matches as the scan produces them.
// Binds to localhost only, so there is no auth.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// Server serves the JSON API and match stream over HTTP.
type Server struct {
	engine   socket.Engine
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once
	upgrader websocket.Upgrader

	portFilePath string // .acm/http.port
}

// NewServer creates an HTTP server for the given engine.
// The portFilePath is where the bound port is written for discovery.
func NewServer(engine socket.Engine, portFilePath string) *Server {
	return &Server{
		engine:       engine,
		portFilePath: portFilePath,
		started:      time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routing table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/first", s.handleFirst)
	mux.HandleFunc("POST /api/replace", s.handleReplace)
	mux.HandleFunc("GET /ws", s.handleStream)
	return mux
}

// Start begins listening on the preferred port. Writes the port to .acm/http.port.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{Handler: s.Handler()}

	// Write port file for discovery
	if s.portFilePath != "" {
		os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, automaton.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, automaton.ErrNotBuilt):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<20)).Decode(target); err != nil {
		return errors.Wrap(automaton.ErrInvalidArgument, "request body: "+err.Error())
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := s.engine.Info()
	writeJSON(w, http.StatusOK, socket.HealthResult{
		Status:       "ok",
		Engine:       info.Engine,
		Source:       info.Source,
		KeywordCount: info.KeywordCount,
		Reloads:      info.Reloads,
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Keywords:     s.engine.Current().Keywords(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var params socket.SearchParams
	if err := decodeBody(w, r, &params); err != nil {
		writeError(w, err)
		return
	}
	max := params.Max
	if max == 0 {
		max = automaton.Unbounded
	}

	start := time.Now()
	matches, err := s.engine.Current().SearchAll(params.Text, params.Start, max)
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []ports.Match{}
	}
	writeJSON(w, http.StatusOK, socket.SearchResult{
		Matches: matches,
		Count:   len(matches),
		Elapsed: time.Since(start).String(),
	})
}

func (s *Server) handleFirst(w http.ResponseWriter, r *http.Request) {
	var params socket.SearchParams
	if err := decodeBody(w, r, &params); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	m, err := s.engine.Current().SearchFirst(params.Text, params.Start)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, socket.FirstResult{
		Match:   m,
		Found:   !m.IsEmpty(),
		Elapsed: time.Since(start).String(),
	})
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var params socket.ReplaceParams
	if err := decodeBody(w, r, &params); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	out, err := s.engine.Current().Replace(params.Text, params.Replacement)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, socket.ReplaceResult{
		Text:    out,
		Elapsed: time.Since(start).String(),
	})
}
