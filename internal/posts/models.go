// internal/posts/models.go
package posts

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Caption   *string   `json:"caption"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields
	Author        *AuthorInfo `json:"author,omitempty"`
	Media         []PostMedia `json:"media"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	Comments      []*Comment  `json:"comments,omitempty"`
}

type PostMedia struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"-"`
	MediaURL  string `json:"url"`
	MediaType string `json:"type"`
	Position  int    `json:"-"`
}

type AuthorInfo struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"-"`
	ParentID  *int64    `json:"parent_comment"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Author     *AuthorInfo `json:"author,omitempty"`
	Replies    []*Comment  `json:"replies"`
	LikesCount int         `json:"likes_count"`
}

// LikeResult reports the outcome of a like toggle
type LikeResult struct {
	Liked   bool   `json:"-"`
	Message string `json:"message"`
}

type CreatePostRequest struct {
	Caption   string   `json:"caption"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

type UpdatePostRequest struct {
	Caption string `json:"caption"`
}

type CommentRequest struct {
	Content       string `json:"content"`
	ParentComment *int64 `json:"parent_comment,omitempty"`
}

type PaginationMeta struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
}

type PostListResponse struct {
	Posts      []Post         `json:"posts"`
	Pagination PaginationMeta `json:"pagination"`
}

type CommentListResponse struct {
	Comments   []*Comment     `json:"comments"`
	Pagination PaginationMeta `json:"pagination"`
}
