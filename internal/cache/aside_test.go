package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			fetches++
			*dest = payload{Name: "posts", Count: 2}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "posts:list", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 2, first.Count)

	var second payload
	require.NoError(t, Aside(ctx, "posts:list", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must be served from Redis")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var dest payload
	wantErr := errors.New("db down")
	err := Aside(ctx, "posts:list", &dest, time.Minute, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	found, err := GetJSON(ctx, "posts:list", &dest)
	require.NoError(t, err)
	assert.False(t, found, "failed fetches must not populate the cache")
}

func TestAside_NoClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetches := 0
	var dest payload
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(ctx, "posts:list", &dest, time.Minute, func() error {
			fetches++
			return nil
		}))
	}
	assert.Equal(t, 2, fetches, "without Redis every read goes to the source")
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostListKey(), payload{Name: "x"}, time.Minute))
	InvalidatePostLists(ctx)

	var dest payload
	found, err := GetJSON(ctx, PostListKey(), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetJSON_TTL(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostCommentsKey(3), payload{Name: "c"}, PostCommentsTTL))

	mr.FastForward(PostCommentsTTL + time.Second)

	var dest payload
	found, err := GetJSON(ctx, PostCommentsKey(3), &dest)
	require.NoError(t, err)
	assert.False(t, found, "entries must expire after their TTL")
}
