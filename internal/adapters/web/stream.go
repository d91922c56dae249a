package web

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// StreamFrame is one outbound websocket message. A scan produces one frame
// per match followed by a single Done frame carrying the total, or an Error
// frame if the text was rejected.
type StreamFrame struct {
	Match *ports.Match `json:"match,omitempty"`
	Done  bool         `json:"done,omitempty"`
	Count int          `json:"count"`
	Error string       `json:"error,omitempty"`
}

// matchSource is the lazy scan the stream consumes; *automaton.Automaton
// provides it directly, other engines fall back to SearchAll.
type matchSource interface {
	Iter(text string, start, max int) (*automaton.Iterator, error)
}

// handleStream upgrades to a websocket. Every inbound text frame is scanned
// with the matcher that is current at that moment, and matches are written
// as they are produced rather than collected first.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := s.streamMatches(conn, string(data)); err != nil {
			return
		}
	}
}

func (s *Server) streamMatches(conn *websocket.Conn, text string) error {
	count := 0
	emit := func(m ports.Match) error {
		count++
		return conn.WriteJSON(StreamFrame{Match: &m})
	}

	var scanErr error
	switch m := s.engine.Current().(type) {
	case matchSource:
		it, err := m.Iter(text, 0, automaton.Unbounded)
		if err != nil {
			scanErr = err
			break
		}
		for match, ok := it.Next(); ok; match, ok = it.Next() {
			if err := emit(match); err != nil {
				return err
			}
		}
	default:
		matches, err := m.SearchAll(text, 0, automaton.Unbounded)
		if err != nil {
			scanErr = err
			break
		}
		for _, match := range matches {
			if err := emit(match); err != nil {
				return err
			}
		}
	}

	if scanErr != nil {
		return conn.WriteJSON(StreamFrame{Error: scanErr.Error()})
	}
	return conn.WriteJSON(StreamFrame{Done: true, Count: count})
}
