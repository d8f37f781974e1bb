package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"waves-server/internal/config"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to the document store. An unreachable server is
// logged, not fatal: readiness reports it and requests fail individually.
func NewRedisClient(cfg *config.Config) (redis.UniversalClient, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL must be provided")
	}

	opts, err := buildUniversalOptions(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Strs("addrs", opts.Addrs).Msg("redis is not reachable yet")
	} else {
		log.Info().Strs("addrs", opts.Addrs).Msg("connected to redis")
	}
	return client, nil
}

// buildUniversalOptions accepts a comma separated list of redis:// URLs or
// bare host:port addresses. Settings are taken from the first URL.
func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}

// Ping checks the connection with a bounded timeout.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}

// Namespaces lists up to limit distinct key namespaces under prefix. For the
// key "waves:user:alice" with prefix "waves:" the namespace is "user".
func Namespaces(ctx context.Context, client redis.UniversalClient, prefix string, limit int) ([]string, error) {
	seen := make(map[string]struct{})
	iter := client.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), prefix)
		namespace, _, _ := strings.Cut(rest, ":")
		if namespace == "" {
			continue
		}
		seen[namespace] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// StoreProbe reports on the document store for the diagnostic endpoints.
type StoreProbe struct {
	client redis.UniversalClient
	prefix string
}

func NewStoreProbe(client redis.UniversalClient, cfg *config.Config) *StoreProbe {
	return &StoreProbe{client: client, prefix: cfg.RedisKeyPrefix}
}

func (p *StoreProbe) Ping(ctx context.Context) error {
	return Ping(ctx, p.client)
}

func (p *StoreProbe) Namespaces(ctx context.Context, limit int) ([]string, error) {
	return Namespaces(ctx, p.client, p.prefix, limit)
}
