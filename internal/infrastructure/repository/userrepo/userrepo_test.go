package userrepo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waves-server/internal/domain/user"
	"waves-server/internal/utils/platformerrors"
)

func newRepo(t *testing.T) (*UserRedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewUserRedisRepository(client, "waves:"), mr
}

func TestInsertAndFind(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	err := repo.Insert(ctx, &user.User{Username: "Surfer", PasswordHash: "h", Tokens: []string{"t1"}, IsActive: true})
	require.NoError(t, err)

	assert.True(t, mr.Exists("waves:user:surfer"))
	token, err := mr.Get("waves:token:t1")
	require.NoError(t, err)
	assert.Equal(t, "surfer", token)

	u, err := repo.FindByUsername(ctx, "surfer")
	require.NoError(t, err)
	assert.Equal(t, "Surfer", u.Username)
	assert.True(t, u.IsActive)

	u, err = repo.FindByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Surfer", u.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = repo.FindByToken(ctx, "nope")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestInsertDuplicate(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &user.User{Username: "surfer"}))
	err := repo.Insert(ctx, &user.User{Username: "SURFER"})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}

func TestUpdateMaintainsTokenIndex(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &user.User{Username: "surfer", Tokens: []string{"t1"}}))

	u, err := repo.Update(ctx, "surfer", func(u *user.User) error {
		u.AddToken("t2")
		u.RemoveToken("t1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, u.Tokens)

	assert.False(t, mr.Exists("waves:token:t1"))
	assert.True(t, mr.Exists("waves:token:t2"))

	_, err = repo.FindByToken(ctx, "t1")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdateMissingUser(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Update(context.Background(), "ghost", func(*user.User) error { return nil })
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdateMutateErrorAbortsWrite(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &user.User{Username: "surfer"}))

	_, err := repo.Update(ctx, "surfer", func(u *user.User) error {
		u.IsActive = true
		return fmt.Errorf("stop")
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabase))

	u, err := repo.FindByUsername(ctx, "surfer")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestConcurrentTokenAppendsAreKept(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &user.User{Username: "surfer"}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.Update(ctx, "surfer", func(u *user.User) error {
				u.AddToken(fmt.Sprintf("t%d", i))
				return nil
			})
		}(i)
	}
	wg.Wait()

	u, err := repo.FindByUsername(ctx, "surfer")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t0", "t1", "t2", "t3", "t4"}, u.Tokens)
}

func TestDiffTokens(t *testing.T) {
	added, removed := diffTokens([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)
}
