package search

import (
	"encoding/json"
	"net"
	"net/url"
	"strconv"
)

// Engine is the engine label reported in every response envelope.
const Engine = "Waves"

// Scheme is the protocol used to talk to the forward proxy.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Valid reports whether the scheme is one the fetcher can dial.
func (s Scheme) Valid() bool {
	return s == SchemeHTTP || s == SchemeHTTPS
}

// Credentials authenticate against the forward proxy.
type Credentials struct {
	Username string
	Password string
}

// ProxyEndpoint describes a forward HTTP(S) proxy. It is resolved per request
// and never mutated afterwards.
type ProxyEndpoint struct {
	Scheme      Scheme
	Host        string
	Port        uint16
	Credentials *Credentials
}

// URL renders the endpoint as a proxy URL. Credentials are embedded with
// url.UserPassword and are not otherwise validated.
func (e ProxyEndpoint) URL() *url.URL {
	u := &url.URL{
		Scheme: string(e.Scheme),
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port))),
	}
	if e.Credentials != nil {
		u.User = url.UserPassword(e.Credentials.Username, e.Credentials.Password)
	}
	return u
}

// Redacted renders the endpoint URL with the password masked.
func (e ProxyEndpoint) Redacted() string {
	return e.URL().Redacted()
}

// Authenticated reports whether the endpoint carries credentials.
func (e ProxyEndpoint) Authenticated() bool {
	return e.Credentials != nil
}

type proxyEndpointJSON struct {
	Scheme        Scheme `json:"scheme"`
	Host          string `json:"host"`
	Port          uint16 `json:"port"`
	Authenticated bool   `json:"authenticated"`
	URL           string `json:"url"`
}

// MarshalJSON never exposes the proxy password.
func (e ProxyEndpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(proxyEndpointJSON{
		Scheme:        e.Scheme,
		Host:          e.Host,
		Port:          e.Port,
		Authenticated: e.Authenticated(),
		URL:           e.Redacted(),
	})
}

// Result is a single organic search result in provider order.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Envelope is the response returned to search API callers.
// Count always equals len(Results).
type Envelope struct {
	Engine  string         `json:"engine"`
	Proxy   *ProxyEndpoint `json:"proxy"`
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []Result       `json:"results"`
}

// NewEnvelope builds an envelope and derives Count from results.
func NewEnvelope(query string, proxy *ProxyEndpoint, results []Result) *Envelope {
	if results == nil {
		results = []Result{}
	}
	return &Envelope{
		Engine:  Engine,
		Proxy:   proxy,
		Query:   query,
		Count:   len(results),
		Results: results,
	}
}
