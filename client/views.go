package client

import "context"

// PostsView is a read of a post listing plus the local permission predicates.
// Permission results are recomputed from the current actor on every call,
// never cached.
type PostsView struct {
	result   *PostsResult
	err      error
	fetching bool
	actor    Actor
}

// PostsView fetches a listing and wraps it with the current actor.
func (c *Cache) PostsView(ctx context.Context, q Query) *PostsView {
	result, fetching, err := c.posts(ctx, q)
	return &PostsView{result: result, err: err, fetching: fetching, actor: c.Actor()}
}

func (v *PostsView) Posts() []*Post {
	if v.result == nil {
		return nil
	}
	return v.result.Posts
}

func (v *PostsView) Pagination() Pagination {
	if v.result == nil {
		return Pagination{}
	}
	return v.result.Pagination
}

func (v *PostsView) Err() error { return v.err }

// IsLoading reports whether no data is available at all.
func (v *PostsView) IsLoading() bool { return v.result == nil && v.err == nil }

// IsFetching reports whether this read went to the network.
func (v *PostsView) IsFetching() bool { return v.fetching }

func (v *PostsView) CanEdit(p *Post) bool   { return canMutate(v.actor, p) }
func (v *PostsView) CanDelete(p *Post) bool { return canMutate(v.actor, p) }

// PostView is the detail counterpart of PostsView.
type PostView struct {
	post     *Post
	err      error
	fetching bool
	actor    Actor
}

// PostView fetches a post detail and wraps it with the current actor.
func (c *Cache) PostView(ctx context.Context, id uint) *PostView {
	post, fetching, err := c.post(ctx, id)
	return &PostView{post: post, err: err, fetching: fetching, actor: c.Actor()}
}

func (v *PostView) Post() *Post      { return v.post }
func (v *PostView) Err() error       { return v.err }
func (v *PostView) IsLoading() bool  { return v.post == nil && v.err == nil }
func (v *PostView) IsFetching() bool { return v.fetching }

func (v *PostView) CanEdit() bool   { return canMutate(v.actor, v.post) }
func (v *PostView) CanDelete() bool { return canMutate(v.actor, v.post) }

// canMutate allows the author always and admins everywhere. The server
// enforces stricter author-only rules on update and delete; the admin branch
// exists for moderation surfaces that are hidden rather than disabled.
func canMutate(actor Actor, p *Post) bool {
	if p == nil || actor.ID == 0 {
		return false
	}
	return p.AuthorID == actor.ID || actor.Role == "admin"
}
