package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// Engine provides the matcher being served and the hook to rebuild it.
// Current never returns nil; an engine with nothing loaded hands out an
// unbuilt matcher whose operations fail with automaton.ErrNotBuilt.
// Thread safety is the implementor's responsibility.
type Engine interface {
	Current() ports.Matcher
	Reload() (ReloadResult, error)
	Info() EngineInfo
}

// Server is the daemon that listens on a Unix socket and serves match requests.
type Server struct {
	engine   Engine
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by the given engine.
func NewServer(engine Engine, sockPath string) *Server {
	return &Server{
		engine:     engine,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	// Handle stale socket
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return errors.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024) // 16MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodSearch:
		return s.handleSearch(req)
	case MethodFirst:
		return s.handleFirst(req)
	case MethodReplace:
		return s.handleReplace(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the generic params into target.
func decodeParams(req Request, target interface{}) error {
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return err
	}
	return json.Unmarshal(paramsJSON, target)
}

// errorResponse converts a matcher error into a response, keeping its class.
func errorResponse(id string, err error) Response {
	resp := Response{ID: id, Error: err.Error()}
	switch {
	case errors.Is(err, automaton.ErrInvalidArgument):
		resp.Code = CodeInvalidArgument
	case errors.Is(err, automaton.ErrNotBuilt):
		resp.Code = CodeNotBuilt
	}
	return resp
}

func (s *Server) handleSearch(req Request) Response {
	var params SearchParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid search params"}
	}
	max := params.Max
	if max == 0 {
		max = automaton.Unbounded
	}

	start := time.Now()
	matches, err := s.engine.Current().SearchAll(params.Text, params.Start, max)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	if matches == nil {
		matches = []ports.Match{}
	}

	return Response{
		ID: req.ID,
		Result: SearchResult{
			Matches: matches,
			Count:   len(matches),
			Elapsed: time.Since(start).String(),
		},
	}
}

func (s *Server) handleFirst(req Request) Response {
	var params SearchParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid first params"}
	}

	start := time.Now()
	m, err := s.engine.Current().SearchFirst(params.Text, params.Start)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{
		ID: req.ID,
		Result: FirstResult{
			Match:   m,
			Found:   !m.IsEmpty(),
			Elapsed: time.Since(start).String(),
		},
	}
}

func (s *Server) handleReplace(req Request) Response {
	var params ReplaceParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid replace params"}
	}

	start := time.Now()
	out, err := s.engine.Current().Replace(params.Text, params.Replacement)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{
		ID: req.ID,
		Result: ReplaceResult{
			Text:    out,
			Elapsed: time.Since(start).String(),
		},
	}
}

func (s *Server) handleHealth(req Request) Response {
	info := s.engine.Info()
	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status:       "ok",
			Engine:       info.Engine,
			Source:       info.Source,
			KeywordCount: info.KeywordCount,
			Reloads:      info.Reloads,
			Uptime:       time.Since(s.started).Round(time.Second).String(),
			Keywords:     s.engine.Current().Keywords(),
		},
	}
}

func (s *Server) handleReload(req Request) Response {
	result, err := s.engine.Reload()
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
