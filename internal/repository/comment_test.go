package repository

import (
	"context"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	comment := &models.Comment{Content: "Nice write-up", PostID: 1, AuthorID: 2}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, comment)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembleTree(t *testing.T) {
	parentID := uint(1)

	// rows arrive oldest first, as ListByPost orders them
	rows := []*models.Comment{
		{ID: 1, Content: "first"},
		{ID: 2, Content: "second"},
		{ID: 3, Content: "reply to first", ParentID: &parentID},
	}

	tree := assembleTree(rows)

	// top level newest first
	assert.Len(t, tree, 2)
	assert.Equal(t, uint(2), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)

	// reply nested under its parent, oldest first
	assert.Len(t, tree[1].Replies, 1)
	assert.Equal(t, uint(3), tree[1].Replies[0].ID)
	assert.Empty(t, tree[0].Replies)
}

func TestAssembleTree_OrphanPromoted(t *testing.T) {
	missingParent := uint(99)
	rows := []*models.Comment{
		{ID: 1, Content: "orphaned reply", ParentID: &missingParent},
	}

	tree := assembleTree(rows)
	assert.Len(t, tree, 1)
	assert.Equal(t, uint(1), tree[0].ID)
}

func TestAssembleTree_Empty(t *testing.T) {
	assert.Empty(t, assembleTree(nil))
}
