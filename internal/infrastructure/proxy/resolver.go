package proxy

import (
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/configsource"
)

const (
	DefaultHost   = "93.127.130.22"
	DefaultPort   = "8080"
	DefaultScheme = "http"
)

var (
	HostSetting = configsource.Setting{
		Keys:    []string{"PROXY_HOST", "WAVES_PROXY_HOST"},
		Default: DefaultHost,
	}
	PortSetting = configsource.Setting{
		Keys:    []string{"PROXY_PORT", "WAVES_PROXY_PORT"},
		Default: DefaultPort,
	}
	SchemeSetting = configsource.Setting{
		Keys:    []string{"PROXY_SCHEME"},
		Default: DefaultScheme,
	}
	UsernameSetting = configsource.Setting{
		Keys: []string{"PROXY_USERNAME", "WAVES_PROXY_USER"},
	}
	PasswordSetting = configsource.Setting{
		Keys: []string{"PROXY_PASSWORD", "WAVES_PROXY_PASS"},
	}
)

// Settings groups the lookups used to build an endpoint.
type Settings struct {
	Host     configsource.Setting
	Port     configsource.Setting
	Scheme   configsource.Setting
	Username configsource.Setting
	Password configsource.Setting
}

// DefaultSettings returns the standard keys and defaults.
func DefaultSettings() Settings {
	return Settings{
		Host:     HostSetting,
		Port:     PortSetting,
		Scheme:   SchemeSetting,
		Username: UsernameSetting,
		Password: PasswordSetting,
	}
}

// Resolver derives the outbound proxy endpoint from configuration. Nothing is
// cached: every call reads the sources again.
type Resolver struct {
	sources  configsource.Chain
	settings Settings
}

// NewResolver creates a resolver over the given sources with DefaultSettings.
func NewResolver(sources configsource.Chain) *Resolver {
	return &Resolver{sources: sources, settings: DefaultSettings()}
}

// Resolve returns the current endpoint, or nil when host or port cannot be
// determined or are malformed. Credentials are attached only when both username and password
// are non-empty.
func (r *Resolver) Resolve() *search.ProxyEndpoint {
	host := r.sources.Resolve(r.settings.Host)
	port := r.sources.Resolve(r.settings.Port)
	if host == "" || port == "" {
		return nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		log.Warn().Str("host", host).Msg("proxy host must not include a port, proxy disabled")
		return nil
	}

	portNumber, err := strconv.ParseUint(port, 10, 16)
	if err != nil || portNumber == 0 {
		log.Warn().Str("port", port).Msg("invalid proxy port, proxy disabled")
		return nil
	}

	scheme := search.Scheme(strings.ToLower(r.sources.Resolve(r.settings.Scheme)))
	if !scheme.Valid() {
		log.Warn().Str("scheme", string(scheme)).Msg("unsupported proxy scheme, proxy disabled")
		return nil
	}

	endpoint := &search.ProxyEndpoint{
		Scheme: scheme,
		Host:   host,
		Port:   uint16(portNumber),
	}

	username := r.sources.Resolve(r.settings.Username)
	password := r.sources.Resolve(r.settings.Password)
	if username != "" && password != "" {
		endpoint.Credentials = &search.Credentials{Username: username, Password: password}
	}

	return endpoint
}
