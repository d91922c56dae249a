package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// staticEngine serves one matcher and never reloads.
type staticEngine struct {
	m ports.Matcher
}

func (e *staticEngine) Current() ports.Matcher { return e.m }

func (e *staticEngine) Reload() (socket.ReloadResult, error) {
	return socket.ReloadResult{}, nil
}

func (e *staticEngine) Info() socket.EngineInfo {
	return socket.EngineInfo{Engine: "trie", Source: "test", KeywordCount: len(e.m.Keywords())}
}

// listMatcher hides Iter so the stream takes the SearchAll path.
type listMatcher struct {
	ports.Matcher
}

func setupTestServer(t *testing.T, m ports.Matcher) *httptest.Server {
	t.Helper()
	srv := NewServer(&staticEngine{m: m}, "")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func classicServer(t *testing.T) *httptest.Server {
	return setupTestServer(t, automaton.MustBuild("he", "she", "his", "hers"))
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := classicServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result socket.HealthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "trie", result.Engine)
	assert.Equal(t, 4, result.KeywordCount)
	assert.Equal(t, []string{"he", "she", "his", "hers"}, result.Keywords)
}

func TestSearchEndpoint(t *testing.T) {
	ts := classicServer(t)

	resp := postJSON(t, ts.URL+"/api/search", socket.SearchParams{Text: "ushers"})
	require.Equal(t, 200, resp.StatusCode)

	var result socket.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, ports.Match{Start: 1, Text: "she", Length: 3}, result.Matches[0])
}

func TestSearchEndpoint_StartAndMax(t *testing.T) {
	ts := classicServer(t)

	resp := postJSON(t, ts.URL+"/api/search", socket.SearchParams{Text: "ushers", Start: 2, Max: 1})
	require.Equal(t, 200, resp.StatusCode)

	var result socket.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.Matches[0].Start, "offsets stay absolute")
}

func TestSearchEndpoint_NoMatchesIsEmptyArray(t *testing.T) {
	ts := classicServer(t)

	resp := postJSON(t, ts.URL+"/api/search", socket.SearchParams{Text: "xyz"})
	require.Equal(t, 200, resp.StatusCode)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "[]", string(raw["matches"]))
}

func TestSearchEndpoint_InvalidArgument(t *testing.T) {
	ts := classicServer(t)

	resp := postJSON(t, ts.URL+"/api/search", socket.SearchParams{Text: "ushers", Start: 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "invalid argument")
}

func TestSearchEndpoint_MalformedBody(t *testing.T) {
	ts := classicServer(t)

	resp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpoint_NotBuilt(t *testing.T) {
	ts := setupTestServer(t, (*automaton.Automaton)(nil))

	resp := postJSON(t, ts.URL+"/api/search", socket.SearchParams{Text: "ushers"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFirstEndpoint(t *testing.T) {
	ts := classicServer(t)

	resp := postJSON(t, ts.URL+"/api/first", socket.SearchParams{Text: "ushers"})
	require.Equal(t, 200, resp.StatusCode)

	var result socket.FirstResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Found)
	assert.Equal(t, "she", result.Match.Text)

	resp = postJSON(t, ts.URL+"/api/first", socket.SearchParams{Text: "xyz"})
	require.Equal(t, 200, resp.StatusCode)
	result = socket.FirstResult{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Found)
	assert.Equal(t, -1, result.Match.Start)
}

func TestReplaceEndpoint(t *testing.T) {
	ts := setupTestServer(t, automaton.MustBuild("建设", "主题", "建设主题"))

	resp := postJSON(t, ts.URL+"/api/replace", socket.ReplaceParams{Text: "从这里建设主题", Replacement: "-"})
	require.Equal(t, 200, resp.StatusCode)

	var result socket.ReplaceResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Text)
	assert.True(t, strings.HasPrefix(result.Text, "从这里"))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := classicServer(t)

	resp, err := http.Get(ts.URL + "/api/search")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func readFrames(t *testing.T, conn *websocket.Conn) []StreamFrame {
	t.Helper()
	var frames []StreamFrame
	for {
		var f StreamFrame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Done || f.Error != "" {
			return frames
		}
	}
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStream_FramePerMatchThenDone(t *testing.T) {
	ts := classicServer(t)
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ushers")))
	frames := readFrames(t, conn)

	require.Len(t, frames, 4)
	for _, f := range frames[:3] {
		require.NotNil(t, f.Match)
	}
	assert.Equal(t, "she", frames[0].Match.Text)
	assert.True(t, frames[3].Done)
	assert.Equal(t, 3, frames[3].Count)
}

func TestStream_MultipleMessagesOnOneConnection(t *testing.T) {
	ts := classicServer(t)
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("his")))
	frames := readFrames(t, conn)
	require.Len(t, frames, 2)
	assert.Equal(t, "his", frames[0].Match.Text)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("xyz")))
	frames = readFrames(t, conn)
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Done)
	assert.Equal(t, 0, frames[0].Count)
}

func TestStream_DoneFrameAlwaysCarriesCount(t *testing.T) {
	ts := classicServer(t)
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("xyz")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "count", "a scan with no matches still reports its total")
	assert.JSONEq(t, "0", string(raw["count"]))
	assert.JSONEq(t, "true", string(raw["done"]))
}

func TestStream_SearchAllFallback(t *testing.T) {
	ts := setupTestServer(t, listMatcher{automaton.MustBuild("he", "she", "his", "hers")})
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ushers")))
	frames := readFrames(t, conn)
	require.Len(t, frames, 4)
	assert.Equal(t, 3, frames[3].Count)
}

func TestStream_NotBuiltSendsError(t *testing.T) {
	ts := setupTestServer(t, (*automaton.Automaton)(nil))
	conn := dialStream(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ushers")))
	frames := readFrames(t, conn)
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0].Error, "not built")
}

func TestStartStop_WritesPortFile(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "http.port")
	srv := NewServer(&staticEngine{m: automaton.MustBuild("he")}, portFile)
	require.NoError(t, srv.Start(0))

	assert.NotZero(t, srv.Port())
	assert.FileExists(t, portFile)

	resp, err := http.Get(srv.URL() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	srv.Stop()
	srv.Stop()
	assert.NoFileExists(t, portFile)
}

func TestDefaultPort_Range(t *testing.T) {
	p := DefaultPort("/some/project")
	assert.GreaterOrEqual(t, p, 19000)
	assert.Less(t, p, 20000)
	assert.Equal(t, p, DefaultPort("/some/project"))
}
