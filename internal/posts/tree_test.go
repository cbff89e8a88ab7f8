// internal/posts/tree_test.go
package posts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeComment(id int64, parentID *int64, content string, offset time.Duration) *Comment {
	return &Comment{
		ID:        id,
		PostID:    1,
		UserID:    1,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(offset),
		Author:    &AuthorInfo{ID: 1, Username: "alice"},
		Replies:   []*Comment{},
	}
}

func TestBuildCommentTree_Empty(t *testing.T) {
	roots := BuildCommentTree(nil)
	assert.Empty(t, roots)
}

func TestBuildCommentTree_FlatList(t *testing.T) {
	flat := []*Comment{
		makeComment(1, nil, "first", 0),
		makeComment(2, nil, "second", time.Minute),
		makeComment(3, nil, "third", 2*time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 3)
	assert.Equal(t, "first", roots[0].Content)
	assert.Equal(t, "third", roots[2].Content)
	for _, root := range roots {
		assert.Empty(t, root.Replies)
	}
}

func TestBuildCommentTree_ReplyUnderParent(t *testing.T) {
	parentID := int64(1)
	flat := []*Comment{
		makeComment(1, nil, "top", 0),
		makeComment(2, &parentID, "reply", time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 1, "reply must not appear top-level")
	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, "reply", roots[0].Replies[0].Content)
}

func TestBuildCommentTree_DeepNesting(t *testing.T) {
	id1, id2, id3 := int64(1), int64(2), int64(3)
	flat := []*Comment{
		makeComment(1, nil, "level 0", 0),
		makeComment(2, &id1, "level 1", time.Minute),
		makeComment(3, &id2, "level 2", 2*time.Minute),
		makeComment(4, &id3, "level 3", 3*time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 1)
	level1 := roots[0].Replies
	require.Len(t, level1, 1)
	level2 := level1[0].Replies
	require.Len(t, level2, 1)
	level3 := level2[0].Replies
	require.Len(t, level3, 1)
	assert.Equal(t, "level 3", level3[0].Content)
}

func TestBuildCommentTree_SiblingOrderPreserved(t *testing.T) {
	parentID := int64(1)
	flat := []*Comment{
		makeComment(1, nil, "top", 0),
		makeComment(2, &parentID, "older reply", time.Minute),
		makeComment(3, &parentID, "newer reply", 2*time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, "older reply", roots[0].Replies[0].Content)
	assert.Equal(t, "newer reply", roots[0].Replies[1].Content)
}

func TestBuildCommentTree_OrphanSurfacesTopLevel(t *testing.T) {
	missingParent := int64(999)
	flat := []*Comment{
		makeComment(1, nil, "top", 0),
		makeComment(2, &missingParent, "orphan", time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "orphan", roots[1].Content)
}

func TestBuildCommentTree_MultipleBranches(t *testing.T) {
	id1, id2 := int64(1), int64(2)
	flat := []*Comment{
		makeComment(1, nil, "first thread", 0),
		makeComment(2, nil, "second thread", time.Minute),
		makeComment(3, &id1, "reply to first", 2*time.Minute),
		makeComment(4, &id2, "reply to second", 3*time.Minute),
		makeComment(5, &id1, "another reply to first", 4*time.Minute),
	}

	roots := BuildCommentTree(flat)

	require.Len(t, roots, 2)
	assert.Len(t, roots[0].Replies, 2)
	assert.Len(t, roots[1].Replies, 1)
}
