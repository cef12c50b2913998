package client

import (
	"fmt"
	"sort"
	"strings"
)

const (
	defaultPage      = 1
	defaultLimit     = 10
	defaultSortBy    = "createdAt"
	defaultSortOrder = "DESC"
)

// canonicalize applies the server's defaults and sorts tags so that queries
// differing only in spelling map to one cache entry.
func canonicalize(q Query) Query {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if strings.EqualFold(q.SortOrder, "asc") {
		q.SortOrder = "ASC"
	} else {
		q.SortOrder = defaultSortOrder
	}
	if len(q.Tags) > 0 {
		tags := make([]string, 0, len(q.Tags))
		for _, t := range q.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		sort.Strings(tags)
		q.Tags = tags
	} else {
		q.Tags = nil
	}
	return q
}

const listKeyPrefix = "posts?"

// listKey derives a deterministic cache key from the canonicalized query.
func listKey(q Query) string {
	q = canonicalize(q)
	return fmt.Sprintf("%spage=%d&limit=%d&sortBy=%s&sortOrder=%s&search=%s&tags=%s&authorId=%d",
		listKeyPrefix, q.Page, q.Limit, q.SortBy, q.SortOrder, q.Search,
		strings.Join(q.Tags, ","), q.AuthorID)
}

func postKey(id uint) string {
	return fmt.Sprintf("post/%d", id)
}

func isListKey(key string) bool {
	return strings.HasPrefix(key, listKeyPrefix)
}
