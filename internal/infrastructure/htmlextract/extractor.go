package htmlextract

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"waves-server/internal/domain/search"
)

// Markers used by the provider's non-JavaScript result page.
var (
	ResultBodyMarker = Marker{Class: "result__body"}
	ResultLinkMarker = Marker{Tag: "a", Class: "result__a"}
	SnippetMarker    = Marker{Class: "result__snippet"}
)

// ResultExtractor parses provider result pages into search results.
type ResultExtractor struct{}

// NewResultExtractor creates a new result extractor.
func NewResultExtractor() *ResultExtractor {
	return &ResultExtractor{}
}

// Extract returns up to maxResults results in document order. Candidates
// without a link target are skipped and do not use up a slot. The scan stops
// as soon as maxResults results are collected. It never fails: markup it
// cannot make sense of yields an empty slice.
func (e *ResultExtractor) Extract(body string, maxResults int) []search.Result {
	results := make([]search.Result, 0)
	if maxResults <= 0 {
		return results
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		log.Debug().Err(err).Msg("unparseable result page, returning no results")
		return results
	}

	skipped := 0
	WalkByMarker(doc, ResultBodyMarker, func(candidate *html.Node) bool {
		result, ok := extractResult(candidate)
		if !ok {
			skipped++
			return true
		}
		results = append(results, result)
		return len(results) < maxResults
	})

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Int("results", len(results)).Msg("result candidates without link skipped")
	}
	return results
}

func extractResult(candidate *html.Node) (search.Result, bool) {
	link := FindFirstByMarker(candidate, ResultLinkMarker)
	if link == nil {
		return search.Result{}, false
	}
	href, ok := Attr(link, "href")
	if !ok || href == "" {
		return search.Result{}, false
	}

	snippet := ""
	if snippetNode := FindFirstByMarker(candidate, SnippetMarker); snippetNode != nil {
		snippet = JoinedTextOf(snippetNode, " ")
	}

	return search.Result{
		Title:   TextOf(link),
		URL:     href,
		Snippet: snippet,
	}, true
}
