package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListKey_Deterministic(t *testing.T) {
	a := listKey(Query{Tags: []string{"go", "testing"}, Search: "cache"})
	b := listKey(Query{Tags: []string{"testing", "go"}, Search: "cache", Page: 1, Limit: 10})
	assert.Equal(t, a, b)

	c := listKey(Query{Tags: []string{"go"}, Search: "cache"})
	assert.NotEqual(t, a, c)
}

func TestListKey_DistinguishesPages(t *testing.T) {
	assert.NotEqual(t,
		listKey(Query{Page: 1}),
		listKey(Query{Page: 2}))
}

func TestCanonicalize_Defaults(t *testing.T) {
	q := canonicalize(Query{})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, "DESC", q.SortOrder)

	q = canonicalize(Query{SortOrder: "Asc"})
	assert.Equal(t, "ASC", q.SortOrder)
}

func TestIsListKey(t *testing.T) {
	assert.True(t, isListKey(listKey(Query{})))
	assert.False(t, isListKey(postKey(1)))
}
