package search

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "waves-server"

const (
	MinLimit     = 1
	MaxLimit     = 20
	DefaultLimit = 10
)

// ProxyResolver derives the current proxy endpoint. A nil endpoint means no
// proxy is configured.
type ProxyResolver interface {
	Resolve() *ProxyEndpoint
}

// Fetcher retrieves the provider's raw HTML result page. Failures are
// reported as *TransportError.
type Fetcher interface {
	Fetch(ctx context.Context, query string, useProxy bool) (string, error)
}

// Extractor turns a provider result page into at most maxResults records.
// It never fails; unexpected markup yields fewer records.
type Extractor interface {
	Extract(html string, maxResults int) []Result
}

// SearchService orchestrates fetching and extraction into a response envelope.
type SearchService struct {
	fetcher   Fetcher
	extractor Extractor
	resolver  ProxyResolver
}

// NewSearchService creates a new search service.
func NewSearchService(fetcher Fetcher, extractor Extractor, resolver ProxyResolver) *SearchService {
	return &SearchService{
		fetcher:   fetcher,
		extractor: extractor,
		resolver:  resolver,
	}
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Search always takes the proxy path. Transport errors are returned unchanged;
// the fetcher already performed its single direct fallback.
//
// The envelope's Proxy is the endpoint resolved at response time. It does not
// say which path served the request.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*Envelope, error) {
	limit = ClampLimit(limit)

	body, err := s.fetcher.Fetch(ctx, query, true)
	if err != nil {
		return nil, err
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "search.extract")
	results := s.extractor.Extract(body, limit)
	span.SetAttributes(
		attribute.Int("search.limit", limit),
		attribute.Int("search.results", len(results)),
	)
	span.End()

	return NewEnvelope(query, s.resolver.Resolve(), results), nil
}

// TopAnswer condenses an envelope into a one-line answer: the first result's
// snippet, or its title when the snippet is empty. ok is false when there is
// nothing usable.
func TopAnswer(envelope *Envelope) (answer string, top *Result, ok bool) {
	if envelope == nil || len(envelope.Results) == 0 {
		return "", nil, false
	}
	first := envelope.Results[0]
	if snippet := strings.TrimSpace(first.Snippet); snippet != "" {
		return snippet, &first, true
	}
	if title := strings.TrimSpace(first.Title); title != "" {
		return title, &first, true
	}
	return "", &first, false
}
