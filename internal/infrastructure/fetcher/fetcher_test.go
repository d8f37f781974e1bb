package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waves-server/internal/config"
	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/telemetry"
)

type stubResolver struct {
	endpoint *search.ProxyEndpoint
	calls    atomic.Int32
}

func (r *stubResolver) Resolve() *search.ProxyEndpoint {
	r.calls.Add(1)
	return r.endpoint
}

func endpointFor(t *testing.T, server *httptest.Server) *search.ProxyEndpoint {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portText, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.ParseUint(portText, 10, 16)
	require.NoError(t, err)
	return &search.ProxyEndpoint{Scheme: search.SchemeHTTP, Host: host, Port: uint16(port)}
}

// closedEndpoint points at a port nothing listens on.
func closedEndpoint(t *testing.T) *search.ProxyEndpoint {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := endpointFor(t, server)
	server.Close()
	return endpoint
}

func newFetcher(providerURL string, resolver search.ProxyResolver, timeout time.Duration) *SearchFetcher {
	return NewSearchFetcher(Config{
		ProviderURL: providerURL + "/html/",
		UserAgent:   config.DefaultUserAgent,
		Timeout:     timeout,
	}, resolver, nil)
}

type countingHandler struct {
	hits    atomic.Int32
	handler http.HandlerFunc
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.hits.Add(1)
	h.handler(w, r)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchThroughProxy(t *testing.T) {
	provider := &countingHandler{handler: respond(http.StatusOK, "direct page")}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	var proxiedURL, userAgent string
	proxy := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		proxiedURL = r.URL.String()
		userAgent = r.Header.Get("User-Agent")
		respond(http.StatusOK, "proxied page")(w, r)
	}}
	proxyServer := httptest.NewServer(proxy)
	defer proxyServer.Close()

	resolver := &stubResolver{endpoint: endpointFor(t, proxyServer)}
	f := newFetcher(providerServer.URL, resolver, 5*time.Second)

	body, err := f.Fetch(context.Background(), "golang generics", true)
	require.NoError(t, err)

	assert.Equal(t, "proxied page", body)
	assert.Equal(t, int32(1), proxy.hits.Load())
	assert.Equal(t, int32(0), provider.hits.Load())
	assert.Equal(t, providerServer.URL+"/html/?q=golang+generics", proxiedURL)
	assert.Equal(t, config.DefaultUserAgent, userAgent)
	assert.Equal(t, int32(1), resolver.calls.Load())
}

func TestFetchFallsBackToDirectOnProxyErrorStatus(t *testing.T) {
	provider := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weather", r.URL.Query().Get("q"))
		assert.Equal(t, "/html/", r.URL.Path)
		respond(http.StatusOK, "direct page")(w, r)
	}}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	proxy := &countingHandler{handler: respond(http.StatusInternalServerError, "proxy broke")}
	proxyServer := httptest.NewServer(proxy)
	defer proxyServer.Close()

	f := newFetcher(providerServer.URL, &stubResolver{endpoint: endpointFor(t, proxyServer)}, 5*time.Second)

	body, err := f.Fetch(context.Background(), "weather", true)
	require.NoError(t, err)

	assert.Equal(t, "direct page", body)
	assert.Equal(t, int32(1), proxy.hits.Load())
	assert.Equal(t, int32(1), provider.hits.Load())
}

func TestFetchFallsBackToDirectOnProxyConnectError(t *testing.T) {
	provider := &countingHandler{handler: respond(http.StatusOK, "direct page")}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	f := newFetcher(providerServer.URL, &stubResolver{endpoint: closedEndpoint(t)}, 5*time.Second)

	body, err := f.Fetch(context.Background(), "weather", true)
	require.NoError(t, err)
	assert.Equal(t, "direct page", body)
}

func TestFetchSurfacesOnlyDirectError(t *testing.T) {
	provider := &countingHandler{handler: respond(http.StatusServiceUnavailable, "busy")}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	proxyEndpoint := closedEndpoint(t)
	f := newFetcher(providerServer.URL, &stubResolver{endpoint: proxyEndpoint}, 5*time.Second)

	body, err := f.Fetch(context.Background(), "weather", true)
	require.Error(t, err)
	assert.Empty(t, body)

	var transportErr *search.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "provider returned 503 Service Unavailable", transportErr.Detail)
	assert.Equal(t, "Search request failed: provider returned 503 Service Unavailable", err.Error())
	assert.NotContains(t, err.Error(), strconv.Itoa(int(proxyEndpoint.Port)))
	assert.Equal(t, int32(1), provider.hits.Load())
}

func TestFetchErrorsKeepRawQueryOutOfLogs(t *testing.T) {
	var buf bytes.Buffer
	previousLogger, previousLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = previousLogger
		zerolog.SetGlobalLevel(previousLevel)
	})

	providerServer := httptest.NewServer(http.NotFoundHandler())
	providerURL := providerServer.URL
	providerServer.Close()

	f := NewSearchFetcher(Config{
		ProviderURL: providerURL + "/html/",
		UserAgent:   config.DefaultUserAgent,
		Timeout:     5 * time.Second,
	}, &stubResolver{endpoint: closedEndpoint(t)}, telemetry.NewQuerySanitizer(telemetry.PIILevelNone, "salt"))

	_, err := f.Fetch(context.Background(), "alice@example.com", true)
	require.Error(t, err)

	var transportErr *search.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, transportErr.Detail, "alice%40example.com")
	assert.NotContains(t, transportErr.SafeDetail, "alice")
	assert.Contains(t, transportErr.SafeDetail, "REDACTED")
	assert.NotContains(t, search.LogSafe(err).Error(), "alice")

	assert.Contains(t, buf.String(), "proxy attempt failed, retrying direct")
	assert.NotContains(t, buf.String(), "alice")
}

func TestRedactLeavesStatusErrorsAlone(t *testing.T) {
	f := NewSearchFetcher(Config{}, &stubResolver{}, telemetry.NewQuerySanitizer(telemetry.PIILevelNone, ""))
	statusErr := errors.New("provider returned 503 Service Unavailable")

	assert.Same(t, statusErr, f.redact(statusErr, "weather"))
}

func TestFetchWithoutProxyMakesSingleDirectAttempt(t *testing.T) {
	provider := &countingHandler{handler: respond(http.StatusBadGateway, "bad")}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	proxy := &countingHandler{handler: respond(http.StatusOK, "proxied page")}
	proxyServer := httptest.NewServer(proxy)
	defer proxyServer.Close()

	resolver := &stubResolver{endpoint: endpointFor(t, proxyServer)}
	f := newFetcher(providerServer.URL, resolver, 5*time.Second)

	_, err := f.Fetch(context.Background(), "weather", false)
	require.Error(t, err)

	assert.True(t, search.IsTransportError(err))
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), provider.hits.Load())
	assert.Equal(t, int32(0), proxy.hits.Load())
	assert.Equal(t, int32(0), resolver.calls.Load())
}

func TestFetchAbsentEndpointStillMakesProxyAttempt(t *testing.T) {
	var calls atomic.Int32
	provider := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			respond(http.StatusInternalServerError, "first")(w, r)
			return
		}
		respond(http.StatusOK, "second")(w, r)
	}}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()

	resolver := &stubResolver{}
	f := newFetcher(providerServer.URL, resolver, 5*time.Second)

	body, err := f.Fetch(context.Background(), "weather", true)
	require.NoError(t, err)

	assert.Equal(t, "second", body)
	assert.Equal(t, int32(2), provider.hits.Load())
	assert.Equal(t, int32(1), resolver.calls.Load())
}

func TestFetchTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	provider := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}}
	providerServer := httptest.NewServer(provider)
	defer providerServer.Close()
	defer close(release)

	f := newFetcher(providerServer.URL, &stubResolver{}, 50*time.Millisecond)

	start := time.Now()
	_, err := f.Fetch(context.Background(), "slow", true)
	require.Error(t, err)

	assert.True(t, search.IsTransportError(err))
	assert.Equal(t, int32(2), provider.hits.Load())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchSendsProxyCredentials(t *testing.T) {
	var authHeader string
	proxy := &countingHandler{handler: func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Proxy-Authorization")
		respond(http.StatusOK, "ok")(w, r)
	}}
	proxyServer := httptest.NewServer(proxy)
	defer proxyServer.Close()

	endpoint := endpointFor(t, proxyServer)
	endpoint.Credentials = &search.Credentials{Username: "bob", Password: "s3cret"}
	f := newFetcher("http://provider.invalid", &stubResolver{endpoint: endpoint}, 5*time.Second)

	_, err := f.Fetch(context.Background(), "q", true)
	require.NoError(t, err)

	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("bob:s3cret")), authHeader)
}

func TestFetchReusesClientPerEndpoint(t *testing.T) {
	f := newFetcher("http://provider.invalid", &stubResolver{}, time.Second)
	a := &search.ProxyEndpoint{Scheme: search.SchemeHTTP, Host: "10.0.0.1", Port: 8080}
	b := &search.ProxyEndpoint{Scheme: search.SchemeHTTP, Host: "10.0.0.2", Port: 8080}

	assert.Same(t, f.clientFor(a), f.clientFor(&search.ProxyEndpoint{Scheme: search.SchemeHTTP, Host: "10.0.0.1", Port: 8080}))
	assert.NotSame(t, f.clientFor(a), f.clientFor(b))
	assert.Same(t, f.direct, f.clientFor(nil))
}

func TestNextState(t *testing.T) {
	failure := errors.New("boom")

	assert.Equal(t, stateDirectAttempt, nextState(stateProxyAttempt, failure))
	assert.Equal(t, stateDone, nextState(stateProxyAttempt, nil))
	assert.Equal(t, stateDone, nextState(stateDirectAttempt, failure))
	assert.Equal(t, stateDone, nextState(stateDirectAttempt, nil))
	assert.Equal(t, stateDone, nextState(stateDone, failure))

	assert.Equal(t, "proxy_attempt", stateProxyAttempt.String())
	assert.Equal(t, "direct_attempt", stateDirectAttempt.String())
	assert.Equal(t, "done", stateDone.String())
}
