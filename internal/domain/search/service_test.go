package search_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/htmlextract"
)

type mockFetcher struct {
	FetchFunc func(ctx context.Context, query string, useProxy bool) (string, error)
	calls     []bool
}

func (m *mockFetcher) Fetch(ctx context.Context, query string, useProxy bool) (string, error) {
	m.calls = append(m.calls, useProxy)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, query, useProxy)
	}
	return "", nil
}

type mockExtractor struct {
	gotLimit int
	results  []search.Result
}

func (m *mockExtractor) Extract(_ string, maxResults int) []search.Result {
	m.gotLimit = maxResults
	return m.results
}

type staticResolver struct {
	endpoint *search.ProxyEndpoint
}

func (r staticResolver) Resolve() *search.ProxyEndpoint {
	return r.endpoint
}

func TestClampLimit(t *testing.T) {
	for _, limit := range []int{-100, -1, 0} {
		assert.Equal(t, 1, search.ClampLimit(limit), "limit %d", limit)
	}
	for _, limit := range []int{21, 50, 1 << 30} {
		assert.Equal(t, 20, search.ClampLimit(limit), "limit %d", limit)
	}
	for limit := 1; limit <= 20; limit++ {
		assert.Equal(t, limit, search.ClampLimit(limit))
	}
}

func TestSearchClampsLimitAndAlwaysUsesProxy(t *testing.T) {
	fetcher := &mockFetcher{FetchFunc: func(context.Context, string, bool) (string, error) {
		return "<html></html>", nil
	}}
	extractor := &mockExtractor{}
	svc := search.NewSearchService(fetcher, extractor, staticResolver{})

	_, err := svc.Search(context.Background(), "golang", 500)
	require.NoError(t, err)
	assert.Equal(t, 20, extractor.gotLimit)

	_, err = svc.Search(context.Background(), "golang", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.gotLimit)

	assert.Equal(t, []bool{true, true}, fetcher.calls)
}

func TestSearchPropagatesTransportErrorUnchanged(t *testing.T) {
	transportErr := search.NewTransportError(errors.New("dial tcp: connection refused"))
	fetcher := &mockFetcher{FetchFunc: func(context.Context, string, bool) (string, error) {
		return "", transportErr
	}}
	extractor := &mockExtractor{}
	svc := search.NewSearchService(fetcher, extractor, staticResolver{})

	envelope, err := svc.Search(context.Background(), "golang", 5)

	assert.Nil(t, envelope)
	assert.Same(t, transportErr, err)
	assert.Equal(t, "Search request failed: dial tcp: connection refused", err.Error())
	assert.Len(t, fetcher.calls, 1)
	assert.Zero(t, extractor.gotLimit)
}

func TestSearchEnvelopeReportsResolvedProxy(t *testing.T) {
	endpoint := &search.ProxyEndpoint{Scheme: search.SchemeHTTP, Host: "10.0.0.1", Port: 3128}
	extractor := &mockExtractor{results: []search.Result{{Title: "Go", URL: "https://go.dev"}}}
	svc := search.NewSearchService(&mockFetcher{}, extractor, staticResolver{endpoint: endpoint})

	envelope, err := svc.Search(context.Background(), "go", 10)
	require.NoError(t, err)

	assert.Equal(t, "Waves", envelope.Engine)
	assert.Equal(t, "go", envelope.Query)
	assert.Same(t, endpoint, envelope.Proxy)
	assert.Equal(t, 1, envelope.Count)
	assert.Equal(t, len(envelope.Results), envelope.Count)
}

func TestSearchWithRealExtractorStopsAtLimit(t *testing.T) {
	var page strings.Builder
	page.WriteString("<html><body>")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&page, `<div class="result"><div class="result__body">
			<a class="result__a" href="https://example.com/%d">Weather %d</a>
			<a class="result__snippet">Forecast number %d</a>
		</div></div>`, i, i, i)
	}
	page.WriteString("</body></html>")

	fetcher := &mockFetcher{FetchFunc: func(context.Context, string, bool) (string, error) {
		return page.String(), nil
	}}
	svc := search.NewSearchService(fetcher, htmlextract.NewResultExtractor(), staticResolver{})

	envelope, err := svc.Search(context.Background(), "weather", 5)
	require.NoError(t, err)

	require.Equal(t, 5, envelope.Count)
	require.Len(t, envelope.Results, 5)
	for i, result := range envelope.Results {
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i+1), result.URL)
		assert.Equal(t, fmt.Sprintf("Weather %d", i+1), result.Title)
		assert.Equal(t, fmt.Sprintf("Forecast number %d", i+1), result.Snippet)
	}
}

func TestSearchMalformedMarkupYieldsEmptyEnvelope(t *testing.T) {
	fetcher := &mockFetcher{FetchFunc: func(context.Context, string, bool) (string, error) {
		return "<<<not really html <div class='nothing'>", nil
	}}
	svc := search.NewSearchService(fetcher, htmlextract.NewResultExtractor(), staticResolver{})

	envelope, err := svc.Search(context.Background(), "anything", 10)
	require.NoError(t, err)

	assert.Equal(t, 0, envelope.Count)
	assert.NotNil(t, envelope.Results)
	assert.Empty(t, envelope.Results)
}

func TestTopAnswer(t *testing.T) {
	_, _, ok := search.TopAnswer(search.NewEnvelope("q", nil, nil))
	assert.False(t, ok)

	answer, top, ok := search.TopAnswer(search.NewEnvelope("q", nil, []search.Result{{Title: "Title only", URL: "u"}}))
	assert.True(t, ok)
	assert.Equal(t, "Title only", answer)
	assert.Equal(t, "u", top.URL)

	answer, _, ok = search.TopAnswer(search.NewEnvelope("q", nil, []search.Result{{Title: "T", Snippet: " The snippet ", URL: "u"}}))
	assert.True(t, ok)
	assert.Equal(t, "The snippet", answer)
}
