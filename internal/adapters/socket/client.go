package socket

import (
	"bufio"
	"encoding/json"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// Client connects to the acm daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Search sends a search request and returns the result. max 0 means unbounded.
func (c *Client) Search(text string, start, max int) (*SearchResult, error) {
	var result SearchResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodSearch,
		Params: SearchParams{Text: text, Start: start, Max: max},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// First sends a first-match request.
func (c *Client) First(text string, start int) (*FirstResult, error) {
	var result FirstResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodFirst,
		Params: SearchParams{Text: text, Start: start},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Replace sends a replace request.
func (c *Client) Replace(text, replacement string) (*ReplaceResult, error) {
	var result ReplaceResult
	err := c.do(Request{
		ID:     "1",
		Method: MethodReplace,
		Params: ReplaceParams{Text: text, Replacement: replacement},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.do(Request{ID: "1", Method: MethodHealth}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the daemon to rebuild its automaton from its keyword source.
func (c *Client) Reload() (*ReloadResult, error) {
	var result ReloadResult
	if err := c.do(Request{ID: "1", Method: MethodReload}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     "1",
		Method: MethodShutdown,
	})
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// do performs a call and decodes the result into target.
func (c *Client) do(req Request, target interface{}) error {
	resp, err := c.call(req)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	if err := json.Unmarshal(resultJSON, target); err != nil {
		return errors.Wrap(err, "unmarshal result")
	}
	return nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	// Send request
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, errors.Wrap(err, "write")
	}

	// Read response
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "read")
		}
		return nil, errors.New("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshal response")
	}
	if resp.Error != "" {
		return nil, remoteError(resp)
	}
	return &resp, nil
}

// remoteError restores the error class the server reported.
func remoteError(resp Response) error {
	switch resp.Code {
	case CodeInvalidArgument:
		return errors.Wrap(automaton.ErrInvalidArgument, "server")
	case CodeNotBuilt:
		return errors.Wrap(automaton.ErrNotBuilt, "server")
	}
	return errors.Errorf("server error: %s", resp.Error)
}

// Matcher adapts the client to ports.Matcher so callers can use a running
// daemon wherever a local matcher is accepted.
func (c *Client) Matcher() ports.Matcher {
	return remoteMatcher{c}
}

type remoteMatcher struct {
	c *Client
}

func (r remoteMatcher) SearchAll(text string, start, max int) ([]ports.Match, error) {
	if max == automaton.Unbounded {
		max = 0
	} else if max < 1 {
		// 0 means unbounded on the wire; reject locally instead.
		return nil, automaton.ValidateSearch(text, start, max)
	}
	res, err := r.c.Search(text, start, max)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

func (r remoteMatcher) SearchFirst(text string, start int) (ports.Match, error) {
	res, err := r.c.First(text, start)
	if err != nil {
		return ports.EmptyMatch, err
	}
	return res.Match, nil
}

func (r remoteMatcher) Replace(text, replacement string) (string, error) {
	res, err := r.c.Replace(text, replacement)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Keywords asks the daemon for its current keyword set. The interface has no
// error return, so an unreachable daemon yields nil.
func (r remoteMatcher) Keywords() []string {
	res, err := r.c.Health()
	if err != nil {
		return nil
	}
	return res.Keywords
}
