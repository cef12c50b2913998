package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory API with call counters and overridable behavior.
type fakeAPI struct {
	mu          sync.Mutex
	listCalls   int
	getCalls    int
	toggleCalls int

	listFn   func(ctx context.Context, q Query) (*PostsResult, error)
	getFn    func(ctx context.Context, id uint) (*Post, error)
	createFn func(ctx context.Context, input PostInput) (*Post, error)
	updateFn func(ctx context.Context, id uint, patch PostPatch) (*Post, error)
	deleteFn func(ctx context.Context, id uint) error
	toggleFn func(ctx context.Context, id uint) (*LikeResult, error)
}

func (f *fakeAPI) ListPosts(ctx context.Context, q Query) (*PostsResult, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return &PostsResult{Posts: []*Post{}}, nil
	}
	return fn(ctx, q)
}

func (f *fakeAPI) GetPost(ctx context.Context, id uint) (*Post, error) {
	f.mu.Lock()
	f.getCalls++
	fn := f.getFn
	f.mu.Unlock()
	if fn == nil {
		return &Post{ID: id}, nil
	}
	return fn(ctx, id)
}

func (f *fakeAPI) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	return f.createFn(ctx, input)
}

func (f *fakeAPI) UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error) {
	return f.updateFn(ctx, id, patch)
}

func (f *fakeAPI) DeletePost(ctx context.Context, id uint) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAPI) ToggleLike(ctx context.Context, id uint) (*LikeResult, error) {
	f.mu.Lock()
	f.toggleCalls++
	fn := f.toggleFn
	f.mu.Unlock()
	return fn(ctx, id)
}

func (f *fakeAPI) counts() (list, get, toggle int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.getCalls, f.toggleCalls
}

func newTestCache(t *testing.T, api API, opts Options) *Cache {
	t.Helper()
	c := NewCache(api, opts)
	t.Cleanup(c.Close)
	return c
}

func loggedIn(c *Cache) {
	c.SetActor(Actor{ID: 7, Role: "member"})
}

func TestCache_FreshEntryServedWithoutRefetch(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCache(t, api, Options{})

	_, err := c.Posts(context.Background(), Query{})
	require.NoError(t, err)
	_, err = c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	list, _, _ := api.counts()
	assert.Equal(t, 1, list, "second read within the staleness window must be served from cache")
}

func TestCache_StaleEntryRefetches(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCache(t, api, Options{StaleTime: time.Nanosecond})

	_, err := c.Posts(context.Background(), Query{})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	list, _, _ := api.counts()
	assert.Equal(t, 2, list)
}

func TestCache_KeyCanonicalization(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCache(t, api, Options{})

	// same logical query spelled three ways
	_, err := c.Posts(context.Background(), Query{Tags: []string{"go", "testing"}})
	require.NoError(t, err)
	_, err = c.Posts(context.Background(), Query{Tags: []string{"testing", "go"}, Page: 1})
	require.NoError(t, err)
	_, err = c.Posts(context.Background(), Query{Tags: []string{" testing ", "go"}, Limit: 10, SortOrder: "desc"})
	require.NoError(t, err)

	list, _, _ := api.counts()
	assert.Equal(t, 1, list, "equivalent queries must share one cache entry")
}

func TestCache_CreateInvalidatesListsAndSeedsDetail(t *testing.T) {
	api := &fakeAPI{
		createFn: func(_ context.Context, input PostInput) (*Post, error) {
			return &Post{ID: 42, Title: input.Title, AuthorID: 7}, nil
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	post, err := c.CreatePost(context.Background(), PostInput{Title: "fresh"})
	require.NoError(t, err)
	require.Equal(t, uint(42), post.ID)

	// detail was seeded: no network call needed
	got, err := c.Post(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Title)

	// list entry went stale: next read refetches
	_, err = c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	list, get, _ := api.counts()
	assert.Equal(t, 2, list)
	assert.Equal(t, 0, get)
}

func TestCache_DeleteTombstonesDetail(t *testing.T) {
	api := &fakeAPI{
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		getFn: func(_ context.Context, _ uint) (*Post, error) {
			return nil, &APIError{Status: 404, Code: "NOT_FOUND", Message: "Post not found"}
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	// seed the detail entry via an initial fetch
	api.getFn = nil
	_, err := c.Post(context.Background(), 5)
	require.NoError(t, err)
	api.mu.Lock()
	api.getFn = func(_ context.Context, _ uint) (*Post, error) {
		return nil, &APIError{Status: 404, Code: "NOT_FOUND", Message: "Post not found"}
	}
	api.mu.Unlock()

	require.NoError(t, c.DeletePost(context.Background(), 5))

	_, ok := c.peekPost(5)
	assert.False(t, ok, "deleted detail entry must not be readable")

	_, err = c.Post(context.Background(), 5)
	assert.True(t, IsNotFound(err))
}

func TestCache_ToggleLikeRequiresActor(t *testing.T) {
	api := &fakeAPI{
		toggleFn: func(_ context.Context, _ uint) (*LikeResult, error) {
			t.Fatal("network must not be reached when not logged in")
			return nil, nil
		},
	}
	c := newTestCache(t, api, Options{})

	_, err := c.ToggleLike(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, _, toggles := api.counts()
	assert.Zero(t, toggles)
}

func TestCache_OptimisticToggleAppliedInFlight(t *testing.T) {
	var c *Cache
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, LikeCount: 3, IsLiked: false}, nil
		},
	}
	api.toggleFn = func(_ context.Context, id uint) (*LikeResult, error) {
		// while the request is in flight, the cached entry already shows
		// the optimistic flip
		p, ok := c.peekPost(id)
		require.True(t, ok)
		assert.Equal(t, 4, p.LikeCount)
		assert.True(t, p.IsLiked)
		return &LikeResult{Liked: true, LikeCount: 4}, nil
	}
	c = newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Post(context.Background(), 1)
	require.NoError(t, err)

	result, err := c.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 4, result.LikeCount)
}

func TestCache_OptimisticRollbackExactRestore(t *testing.T) {
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, LikeCount: 3, IsLiked: false}, nil
		},
		listFn: func(_ context.Context, _ Query) (*PostsResult, error) {
			return &PostsResult{Posts: []*Post{{ID: 1, LikeCount: 3, IsLiked: false}}}, nil
		},
		toggleFn: func(_ context.Context, _ uint) (*LikeResult, error) {
			return nil, errors.New("boom")
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	_, err = c.ToggleLike(context.Background(), 1)
	require.Error(t, err)

	// the failed mutation restored the exact pre-toggle state everywhere
	p, ok := c.peekPost(1)
	require.True(t, ok)
	assert.Equal(t, 3, p.LikeCount)
	assert.False(t, p.IsLiked)

	r, ok := c.peekList(Query{})
	require.True(t, ok)
	require.Len(t, r.Posts, 1)
	assert.Equal(t, 3, r.Posts[0].LikeCount)
	assert.False(t, r.Posts[0].IsLiked)
}

func TestCache_ToggleTouchesOnlyListsHoldingThePost(t *testing.T) {
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, LikeCount: 0, IsLiked: false}, nil
		},
		listFn: func(_ context.Context, q Query) (*PostsResult, error) {
			if q.Search == "other" {
				return &PostsResult{Posts: []*Post{{ID: 2, LikeCount: 9}}}, nil
			}
			return &PostsResult{Posts: []*Post{{ID: 1, LikeCount: 0}}}, nil
		},
		toggleFn: func(_ context.Context, _ uint) (*LikeResult, error) {
			return &LikeResult{Liked: true, LikeCount: 1}, nil
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Posts(context.Background(), Query{})
	require.NoError(t, err)
	_, err = c.Posts(context.Background(), Query{Search: "other"})
	require.NoError(t, err)

	_, err = c.ToggleLike(context.Background(), 1)
	require.NoError(t, err)

	withPost, ok := c.peekList(Query{})
	require.True(t, ok)
	assert.True(t, withPost.Posts[0].IsLiked)
	assert.Equal(t, 1, withPost.Posts[0].LikeCount)

	without, ok := c.peekList(Query{Search: "other"})
	require.True(t, ok)
	assert.False(t, without.Posts[0].IsLiked)
	assert.Equal(t, 9, without.Posts[0].LikeCount)
}

func TestCache_DoubleToggleReturnsToOrigin(t *testing.T) {
	serverLiked := false
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			count := 3
			if serverLiked {
				count = 4
			}
			return &Post{ID: id, LikeCount: count, IsLiked: serverLiked}, nil
		},
		toggleFn: func(_ context.Context, _ uint) (*LikeResult, error) {
			serverLiked = !serverLiked
			count := 3
			if serverLiked {
				count = 4
			}
			return &LikeResult{Liked: serverLiked, LikeCount: count}, nil
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Post(context.Background(), 1)
	require.NoError(t, err)

	first, err := c.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 4, first.LikeCount)

	second, err := c.ToggleLike(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 3, second.LikeCount)

	// settled entries are stale; the next read refetches server truth
	p, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.LikeCount)
	assert.False(t, p.IsLiked)
}

func TestCache_SettleInvalidatesEvenOnSuccess(t *testing.T) {
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id}, nil
		},
		toggleFn: func(_ context.Context, _ uint) (*LikeResult, error) {
			return &LikeResult{Liked: true, LikeCount: 1}, nil
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.ToggleLike(context.Background(), 1)
	require.NoError(t, err)

	_, err = c.Post(context.Background(), 1)
	require.NoError(t, err)

	_, gets, _ := api.counts()
	assert.Equal(t, 2, gets, "a settled mutation must force the next detail read to refetch")
}

func TestCache_RetentionEviction(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCache(t, api, Options{CacheTime: 10 * time.Minute})

	_, err := c.Posts(context.Background(), Query{})
	require.NoError(t, err)

	c.evictExpired(time.Now().Add(11 * time.Minute))

	_, ok := c.peekList(Query{})
	assert.False(t, ok, "entries unused beyond the retention window must be evicted")

	_, err = c.Posts(context.Background(), Query{})
	require.NoError(t, err)
	list, _, _ := api.counts()
	assert.Equal(t, 2, list)
}

func TestCache_ReadsReturnCopies(t *testing.T) {
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, Title: "original", Tags: []string{"a"}}, nil
		},
	}
	c := newTestCache(t, api, Options{})

	first, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	first.Title = "mutated by caller"
	first.Tags[0] = "z"

	second, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "original", second.Title)
	assert.Equal(t, []string{"a"}, second.Tags)
}

func TestCache_UpdateOverwritesDetail(t *testing.T) {
	title := "renamed"
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, Title: "old"}, nil
		},
		updateFn: func(_ context.Context, id uint, patch PostPatch) (*Post, error) {
			return &Post{ID: id, Title: *patch.Title}, nil
		},
	}
	c := newTestCache(t, api, Options{})
	loggedIn(c)

	_, err := c.Post(context.Background(), 1)
	require.NoError(t, err)

	_, err = c.UpdatePost(context.Background(), 1, PostPatch{Title: &title})
	require.NoError(t, err)

	got, err := c.Post(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	_, gets, _ := api.counts()
	assert.Equal(t, 1, gets, "overwritten detail entry must serve without refetch")
}

func TestViews_Permissions(t *testing.T) {
	api := &fakeAPI{
		getFn: func(_ context.Context, id uint) (*Post, error) {
			return &Post{ID: id, AuthorID: 7}, nil
		},
	}
	c := newTestCache(t, api, Options{})

	// anonymous: no permissions
	view := c.PostView(context.Background(), 1)
	require.NoError(t, view.Err())
	assert.False(t, view.CanEdit())
	assert.False(t, view.CanDelete())

	// author may edit
	c.SetActor(Actor{ID: 7, Role: "member"})
	view = c.PostView(context.Background(), 1)
	assert.True(t, view.CanEdit())

	// unrelated member may not, admin may
	c.SetActor(Actor{ID: 8, Role: "member"})
	view = c.PostView(context.Background(), 1)
	assert.False(t, view.CanEdit())

	c.SetActor(Actor{ID: 8, Role: "admin"})
	view = c.PostView(context.Background(), 1)
	assert.True(t, view.CanDelete())
}
