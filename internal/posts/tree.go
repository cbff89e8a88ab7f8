// internal/posts/tree.go
package posts

// BuildCommentTree turns a flat, chronologically ordered comment list into
// the nested reply structure. Each comment is attached to its parent's
// Replies slice; comments without a parent become top-level. Input order is
// preserved at every level, so one pass over the slice is enough.
func BuildCommentTree(flat []*Comment) []*Comment {
	byID := make(map[int64]*Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	roots := make([]*Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			// Orphaned reply (parent outside this post); surface it
			// top-level rather than dropping it
			roots = append(roots, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}

	return roots
}
