package ask

import (
	"context"

	"waves-server/internal/domain/search"
)

// NoAnswer is returned when the search produced nothing usable.
const NoAnswer = "I couldn't find anything about that."

// Source is the page an answer was taken from.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is the response of the ask assistant.
type Answer struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Source   *Source `json:"source,omitempty"`
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) (*search.Envelope, error)
}

// Service answers questions from the top web search result.
type Service struct {
	searcher Searcher
}

// NewService creates a new ask service.
func NewService(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Ask searches for question and condenses the first hit into an answer.
// Transport errors are returned unchanged.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	envelope, err := s.searcher.Search(ctx, question, 1)
	if err != nil {
		return nil, err
	}

	text, top, ok := search.TopAnswer(envelope)
	if !ok {
		return &Answer{Question: question, Answer: NoAnswer}, nil
	}
	return &Answer{
		Question: question,
		Answer:   text,
		Source:   &Source{Title: top.Title, URL: top.URL},
	}, nil
}
