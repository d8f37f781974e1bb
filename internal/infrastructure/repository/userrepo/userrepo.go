package userrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"waves-server/internal/domain/user"
	"waves-server/internal/utils/platformerrors"
)

const maxUpdateRetries = 8

// UserRedisRepository stores each user as a JSON document under
// <prefix>user:<key> and indexes every session token as
// <prefix>token:<token> -> <key>.
type UserRedisRepository struct {
	client redis.UniversalClient
	prefix string
}

var _ user.Repository = (*UserRedisRepository)(nil)

func NewUserRedisRepository(client redis.UniversalClient, prefix string) *UserRedisRepository {
	return &UserRedisRepository{client: client, prefix: prefix}
}

func (r *UserRedisRepository) userKey(username string) string {
	return r.prefix + "user:" + user.Key(username)
}

func (r *UserRedisRepository) tokenKey(token string) string {
	return r.prefix + "token:" + token
}

func (r *UserRedisRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	raw, err := r.client.Get(ctx, r.userKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
			"failed to load user", err, "")
	}
	return decode(ctx, raw)
}

// FindByToken follows the token index. An index entry whose user no longer
// lists the token is treated as unknown.
func (r *UserRedisRepository) FindByToken(ctx context.Context, token string) (*user.User, error) {
	username, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
			"failed to resolve token", err, "")
	}

	u, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !u.HasToken(token) {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRedisRepository) Insert(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to encode user", err, "")
	}

	created, err := r.client.SetNX(ctx, r.userKey(u.Username), data, 0).Result()
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
			"failed to insert user", err, "")
	}
	if !created {
		return user.ErrUsernameTaken
	}

	if len(u.Tokens) == 0 {
		return nil
	}
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, token := range u.Tokens {
			pipe.Set(ctx, r.tokenKey(token), user.Key(u.Username), 0)
		}
		return nil
	})
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
			"failed to index user tokens", err, "")
	}
	return nil
}

// Update runs mutate inside a WATCH transaction on the user document and
// keeps the token index in step with the token list.
func (r *UserRedisRepository) Update(ctx context.Context, username string, mutate func(*user.User) error) (*user.User, error) {
	key := r.userKey(username)

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated *user.User
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return user.ErrUserNotFound
			}
			if err != nil {
				return err
			}
			current, err := decode(ctx, raw)
			if err != nil {
				return err
			}

			before := append([]string(nil), current.Tokens...)
			if err := mutate(current); err != nil {
				return err
			}
			data, err := json.Marshal(current)
			if err != nil {
				return err
			}
			added, removed := diffTokens(before, current.Tokens)

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				for _, token := range added {
					pipe.Set(ctx, r.tokenKey(token), user.Key(current.Username), 0)
				}
				for _, token := range removed {
					pipe.Del(ctx, r.tokenKey(token))
				}
				return nil
			})
			if err == nil {
				updated = current
			}
			return err
		}, key)

		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, user.ErrUserNotFound):
			return nil, err
		default:
			var platformErr *platformerrors.PlatformError
			if errors.As(err, &platformErr) {
				return nil, err
			}
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
				"failed to update user", err, "")
		}
	}

	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
		fmt.Sprintf("user %q is being modified concurrently", username), redis.TxFailedErr, "")
}

func (r *UserRedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabase,
			"document store unreachable", err, "")
	}
	return nil
}

func decode(ctx context.Context, raw []byte) (*user.User, error) {
	var u user.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to decode user", err, "")
	}
	return &u, nil
}

func diffTokens(before, after []string) (added, removed []string) {
	old := make(map[string]struct{}, len(before))
	for _, t := range before {
		old[t] = struct{}{}
	}
	current := make(map[string]struct{}, len(after))
	for _, t := range after {
		current[t] = struct{}{}
		if _, ok := old[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range before {
		if _, ok := current[t]; !ok {
			removed = append(removed, t)
		}
	}
	return added, removed
}
