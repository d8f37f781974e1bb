package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waves-server/internal/config"
	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
)

type stubSearch struct {
	limit int
	err   error
}

func (s *stubSearch) Search(_ context.Context, query string, limit int) (*search.Envelope, error) {
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	proxy := &search.ProxyEndpoint{
		Scheme:      search.SchemeHTTP,
		Host:        "93.127.130.22",
		Port:        8080,
		Credentials: &search.Credentials{Username: "bob", Password: "s3cret"},
	}
	return search.NewEnvelope(query, proxy, []search.Result{
		{Title: "Go", URL: "https://go.dev", Snippet: "The Go language"},
	}), nil
}

type stubAsk struct{}

func (stubAsk) Ask(_ context.Context, question string) (*ask.Answer, error) {
	return &ask.Answer{Question: question, Answer: "The Go language", Source: &ask.Source{Title: "Go", URL: "https://go.dev"}}, nil
}

var testImpl = &mcp.Implementation{Name: "waves-test", Version: "0.1.0"}

func session(t *testing.T, searcher SearchService) *mcp.ClientSession {
	t.Helper()
	server := mcp.NewServer(testImpl, nil)
	NewSearchMCP(searcher, stubAsk{}, nil).RegisterTools(server)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = server.Run(ctx, serverT) }()

	cs, err := mcp.NewClient(testImpl, nil).Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestWebSearchTool(t *testing.T) {
	searcher := &stubSearch{}
	cs := session(t, searcher)

	text, isErr := callText(t, cs, ToolKeyWebSearch, map[string]any{"q": "golang", "limit": 3})
	require.False(t, isErr)
	assert.Equal(t, 3, searcher.limit)

	var payload searchToolPayload
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.Equal(t, "Waves", payload.Engine)
	assert.Equal(t, 1, payload.Count)
	require.NotNil(t, payload.Proxy)
	assert.True(t, payload.Proxy.Authenticated)
	assert.NotContains(t, payload.Proxy.URL, "s3cret")
	assert.NotContains(t, text, "s3cret")
}

func TestWebSearchToolDefaultsAndErrors(t *testing.T) {
	searcher := &stubSearch{}
	cs := session(t, searcher)

	_, isErr := callText(t, cs, ToolKeyWebSearch, map[string]any{"q": "golang"})
	require.False(t, isErr)
	assert.Equal(t, search.DefaultLimit, searcher.limit)

	text, isErr := callText(t, cs, ToolKeyWebSearch, map[string]any{"q": "  "})
	assert.True(t, isErr)
	assert.Equal(t, "q is required", text)

	searcher.err = search.NewTransportError(errors.New("provider returned 503 Service Unavailable"))
	text, isErr = callText(t, cs, ToolKeyWebSearch, map[string]any{"q": "golang"})
	assert.True(t, isErr)
	assert.Equal(t, "Search request failed: provider returned 503 Service Unavailable", text)
}

func TestAskTool(t *testing.T) {
	cs := session(t, &stubSearch{})

	text, isErr := callText(t, cs, ToolKeyAsk, map[string]any{"question": "what is go"})
	require.False(t, isErr)
	assert.Equal(t, "The Go language", text)
}

func TestMCPMethodGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	route := NewMCPRoute(&config.Config{ServiceName: "waves-server"}, NewSearchMCP(&stubSearch{}, stubAsk{}, nil))
	route.RegisterRouter(r.Group("/v1"))

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/mcp", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post("").Code)
	assert.Equal(t, http.StatusBadRequest, post("{not json").Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"jsonrpc":"2.0","id":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`).Code)

	w := post(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ToolKeyWebSearch)
	assert.Contains(t, w.Body.String(), ToolKeyAsk)
}
