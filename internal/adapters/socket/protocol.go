// Package socket implements a JSON-over-Unix-socket protocol for the acm daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/acmatch/internal/ports"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/acm-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/acm-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodSearch   = "search"
	MethodFirst    = "first"
	MethodReplace  = "replace"
	MethodHealth   = "health"
	MethodReload   = "reload"
	MethodShutdown = "shutdown"
)

// Error codes carried next to the error message so clients can restore the
// error class.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotBuilt        = "not_built"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// SearchParams is the params for search and first requests.
// Max 0 means unbounded; first ignores Max.
type SearchParams struct {
	Text  string `json:"text"`
	Start int    `json:"start,omitempty"`
	Max   int    `json:"max,omitempty"`
}

// SearchResult is the result of a search request.
type SearchResult struct {
	Matches []ports.Match `json:"matches"`
	Count   int           `json:"count"`
	Elapsed string        `json:"elapsed"`
}

// FirstResult is the result of a first request. Match is the empty sentinel
// (start -1) when Found is false.
type FirstResult struct {
	Match   ports.Match `json:"match"`
	Found   bool        `json:"found"`
	Elapsed string      `json:"elapsed"`
}

// ReplaceParams is the params for a replace request.
type ReplaceParams struct {
	Text        string `json:"text"`
	Replacement string `json:"replacement"`
}

// ReplaceResult is the result of a replace request.
type ReplaceResult struct {
	Text    string `json:"text"`
	Elapsed string `json:"elapsed"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status       string   `json:"status"`
	Engine       string   `json:"engine"`
	Source       string   `json:"source"`
	KeywordCount int      `json:"keyword_count"`
	Reloads      int      `json:"reloads"`
	Uptime       string   `json:"uptime"`
	Keywords     []string `json:"keywords,omitempty"`
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Source       string `json:"source"`
	KeywordCount int    `json:"keyword_count"`
	Elapsed      string `json:"elapsed"`
}

// EngineInfo describes the matcher currently being served.
type EngineInfo struct {
	Engine       string
	Source       string
	KeywordCount int
	Reloads      int
}
