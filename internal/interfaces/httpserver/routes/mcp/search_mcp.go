package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/metrics"
	"waves-server/internal/infrastructure/telemetry"
)

const (
	ToolKeyWebSearch = "web_search"
	ToolKeyAsk       = "ask"
)

// SearchArgs defines the arguments for the web_search tool
type SearchArgs struct {
	Q     string `json:"q" jsonschema:"search query"`
	Limit *int   `json:"limit,omitempty" jsonschema:"maximum number of results, 1 to 20, default 10"`
}

// AskArgs defines the arguments for the ask tool
type AskArgs struct {
	Question string `json:"question" jsonschema:"question to answer from the web"`
}

type proxyPayload struct {
	Scheme        string `json:"scheme"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Authenticated bool   `json:"authenticated"`
	URL           string `json:"url"`
}

type searchToolPayload struct {
	Engine  string          `json:"engine"`
	Proxy   *proxyPayload   `json:"proxy,omitempty"`
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

type askToolPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Title    string `json:"source_title,omitempty"`
	URL      string `json:"source_url,omitempty"`
}

type SearchService interface {
	Search(ctx context.Context, query string, limit int) (*search.Envelope, error)
}

type AskService interface {
	Ask(ctx context.Context, question string) (*ask.Answer, error)
}

// SearchMCP exposes web search and ask as MCP tools.
type SearchMCP struct {
	searchService SearchService
	askService    AskService
	sanitizer     *telemetry.QuerySanitizer
}

func NewSearchMCP(searchService SearchService, askService AskService, sanitizer *telemetry.QuerySanitizer) *SearchMCP {
	return &SearchMCP{
		searchService: searchService,
		askService:    askService,
		sanitizer:     sanitizer,
	}
}

func (s *SearchMCP) RegisterTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolKeyWebSearch,
		Description: "Search the web through the Waves relay. Returns titles, URLs and snippets of the top results.",
	}, s.webSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolKeyAsk,
		Description: "Answer a question with the snippet of the top web search result.",
	}, s.ask)
}

func (s *SearchMCP) webSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchArgs) (*mcp.CallToolResult, searchToolPayload, error) {
	query := strings.TrimSpace(input.Q)
	empty := searchToolPayload{Engine: search.Engine, Query: input.Q, Results: []search.Result{}}
	if query == "" {
		return errorResult("q is required"), empty, nil
	}

	limit := search.DefaultLimit
	if input.Limit != nil {
		limit = *input.Limit
	}

	start := time.Now()
	envelope, err := s.searchService.Search(ctx, input.Q, limit)
	if err != nil {
		metrics.RecordSearch("error", 0)
		log.Warn().Err(search.LogSafe(err)).Str("tool", ToolKeyWebSearch).Str("query", s.sanitizer.Sanitize(input.Q)).Msg("search service failed")
		return errorResult(err.Error()), empty, nil
	}
	metrics.RecordSearch("success", envelope.Count)

	log.Info().
		Str("tool", ToolKeyWebSearch).
		Int("result_count", envelope.Count).
		Dur("duration", time.Since(start)).
		Msg("MCP tool call completed")

	return nil, toSearchPayload(envelope), nil
}

func (s *SearchMCP) ask(ctx context.Context, _ *mcp.CallToolRequest, input AskArgs) (*mcp.CallToolResult, askToolPayload, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return errorResult("question is required"), askToolPayload{}, nil
	}

	answer, err := s.askService.Ask(ctx, question)
	if err != nil {
		log.Warn().Err(search.LogSafe(err)).Str("tool", ToolKeyAsk).Msg("ask failed")
		return errorResult(err.Error()), askToolPayload{Question: question}, nil
	}

	payload := askToolPayload{Question: answer.Question, Answer: answer.Answer}
	if answer.Source != nil {
		payload.Title = answer.Source.Title
		payload.URL = answer.Source.URL
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: answer.Answer}},
	}, payload, nil
}

func toSearchPayload(envelope *search.Envelope) searchToolPayload {
	payload := searchToolPayload{
		Engine:  envelope.Engine,
		Query:   envelope.Query,
		Count:   envelope.Count,
		Results: envelope.Results,
	}
	if envelope.Proxy != nil {
		payload.Proxy = &proxyPayload{
			Scheme:        string(envelope.Proxy.Scheme),
			Host:          envelope.Proxy.Host,
			Port:          int(envelope.Proxy.Port),
			Authenticated: envelope.Proxy.Authenticated(),
			URL:           envelope.Proxy.Redacted(),
		}
	}
	return payload
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
