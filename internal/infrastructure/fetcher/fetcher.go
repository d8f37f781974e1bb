package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/metrics"
	"waves-server/internal/infrastructure/observability"
	"waves-server/internal/infrastructure/telemetry"
)

const (
	pathProxy  = "proxy"
	pathDirect = "direct"
)

// attemptState drives the at-most-two-attempts fetch policy.
type attemptState int

const (
	stateProxyAttempt attemptState = iota
	stateDirectAttempt
	stateDone
)

func (s attemptState) String() string {
	switch s {
	case stateProxyAttempt:
		return "proxy_attempt"
	case stateDirectAttempt:
		return "direct_attempt"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// nextState allows a single ProxyAttempt -> DirectAttempt transition on
// failure. Every other state ends the fetch.
func nextState(current attemptState, err error) attemptState {
	if current == stateProxyAttempt && err != nil {
		return stateDirectAttempt
	}
	return stateDone
}

// Config configures the provider request.
type Config struct {
	ProviderURL string
	UserAgent   string
	Timeout     time.Duration
}

// SearchFetcher downloads the provider's HTML result page, first through the
// resolved proxy and then, if that fails, over a direct connection.
type SearchFetcher struct {
	cfg       Config
	resolver  search.ProxyResolver
	sanitizer *telemetry.QuerySanitizer
	direct    *resty.Client

	mu      sync.Mutex
	proxied map[string]*resty.Client
}

// NewSearchFetcher creates a fetcher. The proxy endpoint is resolved on every
// Fetch; only the HTTP clients built for each distinct endpoint are reused.
func NewSearchFetcher(cfg Config, resolver search.ProxyResolver, sanitizer *telemetry.QuerySanitizer) *SearchFetcher {
	f := &SearchFetcher{
		cfg:       cfg,
		resolver:  resolver,
		sanitizer: sanitizer,
		proxied:   make(map[string]*resty.Client),
	}
	// RemoveProxy also disables the HTTP_PROXY environment fallback.
	f.direct = f.newClient().RemoveProxy()
	return f
}

func (f *SearchFetcher) newClient() *resty.Client {
	return resty.New().
		SetTimeout(f.cfg.Timeout).
		SetHeader("User-Agent", f.cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetRetryCount(0)
}

func (f *SearchFetcher) clientFor(endpoint *search.ProxyEndpoint) *resty.Client {
	if endpoint == nil {
		return f.direct
	}
	key := endpoint.URL().String()

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.proxied[key]; ok {
		return client
	}
	client := f.newClient().SetProxy(key)
	f.proxied[key] = client
	return client
}

// Fetch returns the raw result page for query. With useProxy the request is
// sent through the resolved proxy and retried once directly on any failure.
// Only the error of the last attempt is reported, as a *search.TransportError.
func (f *SearchFetcher) Fetch(ctx context.Context, query string, useProxy bool) (string, error) {
	ctx, span := observability.StartSpan(ctx, "search.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.query", f.sanitizer.Sanitize(query)),
		attribute.Bool("search.use_proxy", useProxy),
	)

	state := stateDirectAttempt
	if useProxy {
		state = stateProxyAttempt
	}

	var (
		body string
		err  error
	)
	for state != stateDone {
		switch state {
		case stateProxyAttempt:
			endpoint := f.resolver.Resolve()
			body, err = f.attempt(ctx, pathProxy, endpoint, query)
			if err != nil {
				event := log.Warn().Err(f.redact(err, query))
				if endpoint != nil {
					event = event.Str("proxy", endpoint.Redacted())
				}
				event.Msg("proxy attempt failed, retrying direct")
			}
		case stateDirectAttempt:
			body, err = f.attempt(ctx, pathDirect, nil, query)
		}
		state = nextState(state, err)
	}

	if err != nil {
		safeErr := f.redact(err, query)
		observability.RecordError(ctx, safeErr)
		return "", search.NewRedactedTransportError(err, safeErr)
	}
	return body, nil
}

func (f *SearchFetcher) attempt(ctx context.Context, path string, endpoint *search.ProxyEndpoint, query string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "search.fetch."+path)
	defer span.End()
	if endpoint != nil {
		span.SetAttributes(attribute.String("proxy.url", endpoint.Redacted()))
	}

	log.Debug().
		Str("path", path).
		Bool("proxied", endpoint != nil).
		Str("query", f.sanitizer.Sanitize(query)).
		Msg("fetching search results")

	start := time.Now()
	resp, err := f.clientFor(endpoint).R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get(f.cfg.ProviderURL)
	elapsed := time.Since(start).Seconds()

	if err == nil && !resp.IsSuccess() {
		err = fmt.Errorf("provider returned %s", resp.Status())
	}
	if err != nil {
		metrics.RecordFetchAttempt(path, "failure", elapsed)
		observability.RecordError(ctx, f.redact(err, query))
		return "", err
	}

	metrics.RecordFetchAttempt(path, "success", elapsed)
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode()),
		attribute.Int("http.response_size", len(resp.Body())),
	)
	return resp.String(), nil
}

// redact rewrites a transport error so the outbound URL carries the sanitized
// query instead of the raw one. Errors without a URL are returned unchanged.
func (f *SearchFetcher) redact(err error, query string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	values := u.Query()
	if values.Has("q") {
		values.Set("q", f.sanitizer.Sanitize(query))
		u.RawQuery = values.Encode()
	}
	return fmt.Errorf("%s %q: %w", urlErr.Op, u.String(), urlErr.Err)
}
