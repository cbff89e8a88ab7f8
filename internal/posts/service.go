// internal/posts/service.go
package posts

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/instaclone/backend/internal/common/metrics"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthorized   = errors.New("not authorized to perform this action")
	ErrEmptyContent    = errors.New("comment content cannot be empty")
	ErrParentMismatch  = errors.New("parent comment belongs to a different post")
)

// Service implements post, like and comment operations
type Service interface {
	CreatePost(ctx context.Context, userID int64, req *CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, postID int64) (*Post, error)
	ListPosts(ctx context.Context, page, pageSize int) (*PostListResponse, error)
	ListUserPosts(ctx context.Context, userID int64, page, pageSize int) (*PostListResponse, error)
	UpdatePost(ctx context.Context, postID, actorID int64, req *UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, postID, actorID int64) error
	TogglePostLike(ctx context.Context, postID, actorID int64) (*LikeResult, error)

	AddComment(ctx context.Context, postID, actorID int64, req *CommentRequest) (*Comment, error)
	ListComments(ctx context.Context, postID int64, page, pageSize int) (*CommentListResponse, error)
	DeleteComment(ctx context.Context, commentID, actorID int64) error
	ToggleCommentLike(ctx context.Context, commentID, actorID int64) (*LikeResult, error)

	UploadMedia(file multipart.File, header *multipart.FileHeader) (string, error)
}

// Config carries pagination limits into the service
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

type service struct {
	repo    Repository
	uploads *UploadService
	config  Config
}

func NewService(repo Repository, uploads *UploadService, config Config) Service {
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = 10
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = 50
	}
	return &service{
		repo:    repo,
		uploads: uploads,
		config:  config,
	}
}

func (s *service) CreatePost(ctx context.Context, userID int64, req *CreatePostRequest) (*Post, error) {
	caption := strings.TrimSpace(req.Caption)
	if caption == "" && len(req.MediaURLs) == 0 {
		return nil, errors.New("post must have either caption or media")
	}
	if len(req.MediaURLs) > 10 {
		return nil, errors.New("maximum 10 media files allowed per post")
	}

	post := &Post{UserID: userID}
	if caption != "" {
		post.Caption = &caption
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	if len(req.MediaURLs) > 0 {
		media := make([]PostMedia, len(req.MediaURLs))
		for i, url := range req.MediaURLs {
			media[i] = PostMedia{
				PostID:    post.ID,
				MediaURL:  url,
				MediaType: mediaTypeFromURL(url),
				Position:  i,
			}
		}
		if err := s.repo.AddPostMedia(ctx, media); err != nil {
			return nil, err
		}
	}

	metrics.RecordPostCreated()

	return s.GetPost(ctx, post.ID)
}

// GetPost returns the aggregated post view including the full comment tree
func (s *service) GetPost(ctx context.Context, postID int64) (*Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	flat, err := s.repo.ListPostComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Comments = BuildCommentTree(flat)

	return post, nil
}

func (s *service) ListPosts(ctx context.Context, page, pageSize int) (*PostListResponse, error) {
	page, pageSize = s.normalizePagination(page, pageSize)
	offset := (page - 1) * pageSize

	posts, total, err := s.repo.ListPosts(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}

	return &PostListResponse{
		Posts: posts,
		Pagination: PaginationMeta{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			HasNext:  offset+pageSize < total,
		},
	}, nil
}

func (s *service) ListUserPosts(ctx context.Context, userID int64, page, pageSize int) (*PostListResponse, error) {
	page, pageSize = s.normalizePagination(page, pageSize)
	offset := (page - 1) * pageSize

	posts, total, err := s.repo.ListUserPosts(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}

	return &PostListResponse{
		Posts: posts,
		Pagination: PaginationMeta{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			HasNext:  offset+pageSize < total,
		},
	}, nil
}

func (s *service) UpdatePost(ctx context.Context, postID, actorID int64, req *UpdatePostRequest) (*Post, error) {
	ownerID, err := s.repo.GetPostOwner(ctx, postID)
	if err != nil {
		return nil, err
	}
	if ownerID != actorID {
		return nil, ErrNotAuthorized
	}

	caption := strings.TrimSpace(req.Caption)
	if caption == "" {
		return nil, errors.New("caption cannot be empty")
	}

	if err := s.repo.UpdatePostCaption(ctx, postID, caption); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, postID)
}

func (s *service) DeletePost(ctx context.Context, postID, actorID int64) error {
	ownerID, err := s.repo.GetPostOwner(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != actorID {
		return ErrNotAuthorized
	}

	return s.repo.DeletePost(ctx, postID)
}

func (s *service) TogglePostLike(ctx context.Context, postID, actorID int64) (*LikeResult, error) {
	// Existence check first so a missing post reads as 404, not a toggle
	if _, err := s.repo.GetPostOwner(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.repo.TogglePostLike(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	result := &LikeResult{Liked: liked}
	if liked {
		result.Message = "Liked post"
		metrics.RecordLikeToggle("post", "liked")
	} else {
		result.Message = "Unliked post"
		metrics.RecordLikeToggle("post", "unliked")
	}
	return result, nil
}

func (s *service) AddComment(ctx context.Context, postID, actorID int64, req *CommentRequest) (*Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.repo.GetPostOwner(ctx, postID); err != nil {
		return nil, err
	}

	if req.ParentComment != nil {
		parent, err := s.repo.GetCommentByID(ctx, *req.ParentComment)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}
	}

	comment := &Comment{
		PostID:   postID,
		UserID:   actorID,
		ParentID: req.ParentComment,
		Content:  content,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	metrics.RecordCommentCreated()

	return s.repo.GetCommentByID(ctx, comment.ID)
}

// ListComments returns the paginated top-level comments of a post, each with
// its full reply subtree. All comments come back in one query; pagination is
// applied to the assembled roots.
func (s *service) ListComments(ctx context.Context, postID int64, page, pageSize int) (*CommentListResponse, error) {
	if _, err := s.repo.GetPostOwner(ctx, postID); err != nil {
		return nil, err
	}

	page, pageSize = s.normalizePagination(page, pageSize)
	offset := (page - 1) * pageSize

	flat, err := s.repo.ListPostComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	roots := BuildCommentTree(flat)
	total := len(roots)

	paged := []*Comment{}
	if offset < total {
		end := offset + pageSize
		if end > total {
			end = total
		}
		paged = roots[offset:end]
	}

	return &CommentListResponse{
		Comments: paged,
		Pagination: PaginationMeta{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			HasNext:  offset+pageSize < total,
		},
	}, nil
}

// DeleteComment allows the comment author or the owner of the post to delete
func (s *service) DeleteComment(ctx context.Context, commentID, actorID int64) error {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actorID {
		postOwnerID, err := s.repo.GetPostOwner(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if postOwnerID != actorID {
			return ErrNotAuthorized
		}
	}

	return s.repo.DeleteComment(ctx, commentID)
}

func (s *service) ToggleCommentLike(ctx context.Context, commentID, actorID int64) (*LikeResult, error) {
	if _, err := s.repo.GetCommentByID(ctx, commentID); err != nil {
		return nil, err
	}

	liked, err := s.repo.ToggleCommentLike(ctx, commentID, actorID)
	if err != nil {
		return nil, err
	}

	result := &LikeResult{Liked: liked}
	if liked {
		result.Message = "Liked comment"
		metrics.RecordLikeToggle("comment", "liked")
	} else {
		result.Message = "Unliked comment"
		metrics.RecordLikeToggle("comment", "unliked")
	}
	return result, nil
}

func (s *service) UploadMedia(file multipart.File, header *multipart.FileHeader) (string, error) {
	return s.uploads.UploadFile(file, header)
}

func (s *service) normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.config.DefaultPageSize
	}
	if pageSize > s.config.MaxPageSize {
		pageSize = s.config.MaxPageSize
	}
	return page, pageSize
}

func mediaTypeFromURL(url string) string {
	ext := strings.ToLower(filepath.Ext(url))
	switch ext {
	case ".mp4", ".avi", ".mov", ".wmv", ".webm":
		return "video"
	default:
		return "image"
	}
}
