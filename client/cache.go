package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotLoggedIn is returned by mutations that require authentication before
// any network call is made.
var ErrNotLoggedIn = errors.New("client: not logged in")

// Actor identifies the current user for local permission checks.
type Actor struct {
	ID   uint
	Role string
}

// Options configures a Cache. Zero values select the defaults; the windows
// are tuning knobs, not contractual values.
type Options struct {
	// StaleTime is how long a fetched entry is served without refetching.
	// Defaults to 5 minutes.
	StaleTime time.Duration
	// CacheTime is how long an unused entry is retained before eviction.
	// Defaults to 10 minutes.
	CacheTime time.Duration
	Logger    *slog.Logger
}

type entry struct {
	data       any // *PostsResult or *Post; nil marks a tombstone
	fetchedAt  time.Time
	lastAccess time.Time
	// gen advances whenever the entry is invalidated or patched. A refetch
	// result is discarded if the generation moved while it was in flight.
	gen   uint64
	valid bool
}

// Cache is a client-side query cache over an API. Create one per app,
// call Close on teardown.
type Cache struct {
	api       API
	staleTime time.Duration
	cacheTime time.Duration
	log       *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	actor   Actor

	lockMu   sync.Mutex
	keyLocks map[string]*sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewCache creates a query cache over the given API and starts its eviction
// janitor.
func NewCache(api API, opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 5 * time.Minute
	}
	if opts.CacheTime <= 0 {
		opts.CacheTime = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Cache{
		api:       api,
		staleTime: opts.StaleTime,
		cacheTime: opts.CacheTime,
		log:       opts.Logger,
		entries:   make(map[string]*entry),
		keyLocks:  make(map[string]*sync.Mutex),
		done:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.janitor()

	return c
}

// Close stops the janitor and waits for background work to finish.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

// SetActor sets the current user for permission checks and mutations.
func (c *Cache) SetActor(a Actor) {
	c.mu.Lock()
	c.actor = a
	c.mu.Unlock()
}

// Actor returns the current user.
func (c *Cache) Actor() Actor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actor
}

// Posts returns a page of posts, served from cache when fresh.
func (c *Cache) Posts(ctx context.Context, q Query) (*PostsResult, error) {
	result, _, err := c.posts(ctx, q)
	return result, err
}

// Post returns a post by ID, served from cache when fresh. A cache miss or
// stale entry hits the network, which also bumps the server-side view count.
func (c *Cache) Post(ctx context.Context, id uint) (*Post, error) {
	post, _, err := c.post(ctx, id)
	return post, err
}

func (c *Cache) posts(ctx context.Context, q Query) (*PostsResult, bool, error) {
	key := listKey(q)

	data, fresh, gen := c.lookup(key)
	if cached, ok := data.(*PostsResult); ok && fresh {
		return cloneResult(cached), false, nil
	}

	result, err := c.api.ListPosts(ctx, q)
	if err != nil {
		return nil, true, err
	}

	c.store(key, gen, cloneResult(result))
	return result, true, nil
}

func (c *Cache) post(ctx context.Context, id uint) (*Post, bool, error) {
	key := postKey(id)

	data, fresh, gen := c.lookup(key)
	if cached, ok := data.(*Post); ok && fresh {
		return clonePost(cached), false, nil
	}

	post, err := c.api.GetPost(ctx, id)
	if err != nil {
		return nil, true, err
	}

	c.store(key, gen, clonePost(post))
	c.prefetchRelated(post)
	return post, true, nil
}

// prefetchRelated warms the cache with a listing keyed by the post's leading
// tags, mirroring the frontend's related-posts panel.
func (c *Cache) prefetchRelated(post *Post) {
	if len(post.Tags) == 0 {
		return
	}
	tags := post.Tags
	if len(tags) > 3 {
		tags = tags[:3]
	}
	q := Query{Tags: append([]string(nil), tags...)}

	select {
	case <-c.done:
		return
	default:
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, _, err := c.posts(ctx, q); err != nil {
			c.log.Debug("related posts prefetch failed", "postId", post.ID, "error", err)
		}
	}()
}

// lookup returns the entry's data, whether it is fresh, and its generation.
// Tombstoned entries report as misses.
func (c *Cache) lookup(key string) (any, bool, uint64) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key]
	if e == nil || e.data == nil {
		if e != nil {
			return nil, false, e.gen
		}
		return nil, false, 0
	}
	e.lastAccess = now
	fresh := e.valid && now.Sub(e.fetchedAt) < c.staleTime
	return e.data, fresh, e.gen
}

// store writes a fetch result, unless the entry's generation advanced while
// the fetch was in flight.
func (c *Cache) store(key string, gen uint64, data any) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key]
	if e == nil {
		if gen != 0 {
			return
		}
		c.entries[key] = &entry{data: data, fetchedAt: now, lastAccess: now, valid: true}
		return
	}
	if e.gen != gen {
		return
	}
	e.data = data
	e.fetchedAt = now
	e.lastAccess = now
	e.valid = true
}

// CreatePost creates a post, invalidates list entries and seeds the detail
// entry for the new post.
func (c *Cache) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	if c.Actor().ID == 0 {
		return nil, ErrNotLoggedIn
	}

	post, err := c.api.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.invalidateListsLocked()
	c.seedDetailLocked(post)
	c.mu.Unlock()

	return post, nil
}

// UpdatePost applies a partial update, overwrites the detail entry with the
// server's response and invalidates list entries.
func (c *Cache) UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error) {
	if c.Actor().ID == 0 {
		return nil, ErrNotLoggedIn
	}

	post, err := c.api.UpdatePost(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.invalidateListsLocked()
	c.seedDetailLocked(post)
	c.mu.Unlock()

	return post, nil
}

// DeletePost deletes a post, tombstones its detail entry and invalidates list
// entries. The tombstone keeps an in-flight detail refetch from resurrecting
// the deleted post.
func (c *Cache) DeletePost(ctx context.Context, id uint) error {
	if c.Actor().ID == 0 {
		return ErrNotLoggedIn
	}

	if err := c.api.DeletePost(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	c.invalidateListsLocked()
	if e := c.entries[postKey(id)]; e != nil {
		e.data = nil
		e.valid = false
		e.gen++
	}
	c.mu.Unlock()

	return nil
}

// ToggleLike optimistically flips the like state of the post in every cached
// entry holding it, sends the request, and restores the exact snapshots on
// failure. Either way the affected entries are marked stale afterwards so the
// next access refetches authoritative state.
func (c *Cache) ToggleLike(ctx context.Context, id uint) (*LikeResult, error) {
	if c.Actor().ID == 0 {
		return nil, ErrNotLoggedIn
	}

	mutationID := uuid.NewString()

	// Serialize like mutations per post so a second toggle never snapshots
	// half-applied state.
	kl := c.keyLock(postKey(id))
	kl.Lock()
	defer kl.Unlock()

	c.mu.Lock()
	snapshots := make(map[string]any)

	if e := c.entries[postKey(id)]; e != nil && e.data != nil {
		p := e.data.(*Post)
		snapshots[postKey(id)] = clonePost(p)
		flipLike(p)
		e.gen++ // cancel in-flight refetches for this key
	}
	for key, e := range c.entries {
		if !isListKey(key) || e.data == nil {
			continue
		}
		r := e.data.(*PostsResult)
		if !containsPost(r, id) {
			continue
		}
		snapshots[key] = cloneResult(r)
		for _, p := range r.Posts {
			if p.ID == id {
				flipLike(p)
			}
		}
		e.gen++
	}
	c.mu.Unlock()

	c.log.Debug("optimistic like toggle", "mutationId", mutationID, "postId", id)

	result, err := c.api.ToggleLike(ctx, id)

	c.mu.Lock()
	if err != nil {
		for key, snap := range snapshots {
			if e := c.entries[key]; e != nil {
				e.data = snap
				e.gen++
			}
		}
	}
	// Settle: affected entries go stale regardless of outcome.
	if e := c.entries[postKey(id)]; e != nil {
		e.valid = false
		e.gen++
	}
	for key := range snapshots {
		if e := c.entries[key]; e != nil && isListKey(key) {
			e.valid = false
			e.gen++
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("like toggle failed, rolled back", "mutationId", mutationID, "postId", id, "error", err)
		return nil, err
	}
	return result, nil
}

func flipLike(p *Post) {
	if p.IsLiked {
		p.IsLiked = false
		p.LikeCount--
	} else {
		p.IsLiked = true
		p.LikeCount++
	}
}

func containsPost(r *PostsResult, id uint) bool {
	for _, p := range r.Posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (c *Cache) invalidateListsLocked() {
	for key, e := range c.entries {
		if isListKey(key) {
			e.valid = false
			e.gen++
		}
	}
}

func (c *Cache) seedDetailLocked(post *Post) {
	now := time.Now()
	key := postKey(post.ID)
	if e := c.entries[key]; e != nil {
		e.data = clonePost(post)
		e.fetchedAt = now
		e.lastAccess = now
		e.valid = true
		e.gen++
		return
	}
	c.entries[key] = &entry{data: clonePost(post), fetchedAt: now, lastAccess: now, valid: true}
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	kl, ok := c.keyLocks[key]
	if !ok {
		kl = &sync.Mutex{}
		c.keyLocks[key] = kl
	}
	return kl
}

func (c *Cache) janitor() {
	defer c.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

// evictExpired drops entries unused beyond the retention window.
func (c *Cache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.Sub(e.lastAccess) >= c.cacheTime {
			delete(c.entries, key)
		}
	}
}

// peekPost returns the cached detail entry's data without touching freshness
// or triggering a fetch. Used by tests to observe optimistic state.
func (c *Cache) peekPost(id uint) (*Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[postKey(id)]
	if e == nil || e.data == nil {
		return nil, false
	}
	p, ok := e.data.(*Post)
	if !ok {
		return nil, false
	}
	return clonePost(p), true
}

// peekList is the listing counterpart of peekPost.
func (c *Cache) peekList(q Query) (*PostsResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[listKey(q)]
	if e == nil || e.data == nil {
		return nil, false
	}
	r, ok := e.data.(*PostsResult)
	if !ok {
		return nil, false
	}
	return cloneResult(r), true
}

func clonePost(p *Post) *Post {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Tags != nil {
		clone.Tags = append([]string(nil), p.Tags...)
	}
	if p.Author != nil {
		author := *p.Author
		clone.Author = &author
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		clone.PublishedAt = &t
	}
	return &clone
}

func cloneResult(r *PostsResult) *PostsResult {
	if r == nil {
		return nil
	}
	clone := &PostsResult{Pagination: r.Pagination}
	clone.Posts = make([]*Post, len(r.Posts))
	for i, p := range r.Posts {
		clone.Posts[i] = clonePost(p)
	}
	return clone
}
