package infrastructure

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"waves-server/internal/config"
	"waves-server/internal/domain/search"
	"waves-server/internal/domain/user"
	"waves-server/internal/infrastructure/configsource"
	"waves-server/internal/infrastructure/crypto"
	"waves-server/internal/infrastructure/database"
	"waves-server/internal/infrastructure/fetcher"
	"waves-server/internal/infrastructure/htmlextract"
	"waves-server/internal/infrastructure/proxy"
	"waves-server/internal/infrastructure/repository/userrepo"
	"waves-server/internal/infrastructure/telemetry"
)

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Proxy resolution
	ProvideConfigSources,
	proxy.NewResolver,
	wire.Bind(new(search.ProxyResolver), new(*proxy.Resolver)),

	// Search pipeline
	ProvideQuerySanitizer,
	ProvideSearchFetcher,
	wire.Bind(new(search.Fetcher), new(*fetcher.SearchFetcher)),
	htmlextract.NewResultExtractor,
	wire.Bind(new(search.Extractor), new(*htmlextract.ResultExtractor)),

	// Document store
	ProvideRedisClient,
	ProvideUserRepository,
	wire.Bind(new(user.Repository), new(*userrepo.UserRedisRepository)),
	database.NewStoreProbe,

	// Credentials
	crypto.NewBcryptHasher,
	wire.Bind(new(user.PasswordHasher), new(*crypto.BcryptHasher)),
	crypto.NewRandomTokenGenerator,
	wire.Bind(new(user.TokenGenerator), new(*crypto.RandomTokenGenerator)),
)

// ProvideConfigSources returns the lookup chain for proxy settings: the
// process environment, then the optional YAML file. The file is read once;
// the environment is consulted on every resolve.
func ProvideConfigSources(cfg *config.Config) (configsource.Chain, error) {
	return BuildConfigSources(cfg.ProxyConfigFile)
}

// BuildConfigSources is ProvideConfigSources for callers without a Config.
func BuildConfigSources(proxyConfigFile string) (configsource.Chain, error) {
	chain := configsource.Chain{configsource.NewEnvSource()}
	if proxyConfigFile == "" {
		return chain, nil
	}

	fileSource, err := configsource.LoadYAMLFile(proxyConfigFile)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", proxyConfigFile).Msg("proxy settings file loaded")
	return append(chain, fileSource), nil
}

func ProvideQuerySanitizer(cfg *config.Config) *telemetry.QuerySanitizer {
	return telemetry.NewQuerySanitizer(telemetry.ParsePIILevel(cfg.QueryPIILevel), cfg.ServiceName)
}

func ProvideSearchFetcher(cfg *config.Config, resolver search.ProxyResolver, sanitizer *telemetry.QuerySanitizer) *fetcher.SearchFetcher {
	return fetcher.NewSearchFetcher(fetcher.Config{
		ProviderURL: cfg.SearchProviderURL,
		UserAgent:   cfg.SearchUserAgent,
		Timeout:     cfg.SearchHTTPTimeout,
	}, resolver, sanitizer)
}

// ProvideRedisClient connects to redis; the cleanup closes the client.
func ProvideRedisClient(cfg *config.Config) (redis.UniversalClient, func(), error) {
	client, err := database.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis client")
		}
	}
	return client, cleanup, nil
}

func ProvideUserRepository(client redis.UniversalClient, cfg *config.Config) *userrepo.UserRedisRepository {
	return userrepo.NewUserRedisRepository(client, cfg.RedisKeyPrefix)
}
