package cache

import (
	"context"
	"fmt"
	"time"
)

// Post detail responses are never cached: the view counter must reflect the
// post-increment value on every read.
const (
	PostListKeyPrefix     = "posts:list"
	PostCommentsKeyPrefix = "post:%d:comments"
	UserKeyPrefix         = "user:%d"
)

const (
	PostListTTL     = 2 * time.Minute
	PostCommentsTTL = 2 * time.Minute
	UserTTL         = 5 * time.Minute
)

// PostListKey returns the cache key for the default anonymous first page.
// Parameterized list queries are not cached server-side; clients carry their
// own keyed cache.
func PostListKey() string {
	return PostListKeyPrefix
}

func PostCommentsKey(postID uint) string {
	return fmt.Sprintf(PostCommentsKeyPrefix, postID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePostLists(ctx context.Context) {
	Invalidate(ctx, PostListKey())
}

func InvalidatePostComments(ctx context.Context, postID uint) {
	Invalidate(ctx, PostCommentsKey(postID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
