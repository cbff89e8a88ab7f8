// internal/posts/repository.go
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Repository defines data access for posts, media, likes and comments
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error
	AddPostMedia(ctx context.Context, media []PostMedia) error
	GetPostByID(ctx context.Context, postID int64) (*Post, error)
	GetPostOwner(ctx context.Context, postID int64) (int64, error)
	GetMediaForPosts(ctx context.Context, postIDs []int64) (map[int64][]PostMedia, error)
	ListPosts(ctx context.Context, limit, offset int) ([]Post, int, error)
	ListUserPosts(ctx context.Context, userID int64, limit, offset int) ([]Post, int, error)
	UpdatePostCaption(ctx context.Context, postID int64, caption string) error
	DeletePost(ctx context.Context, postID int64) error
	TogglePostLike(ctx context.Context, postID, userID int64) (bool, error)

	CreateComment(ctx context.Context, comment *Comment) error
	GetCommentByID(ctx context.Context, commentID int64) (*Comment, error)
	ListPostComments(ctx context.Context, postID int64) ([]*Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (user_id, caption, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Caption).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postgresRepository) AddPostMedia(ctx context.Context, media []PostMedia) error {
	if len(media) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(media))
	valueArgs := make([]interface{}, 0, len(media)*4)

	for i, m := range media {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d)",
			i*4+1, i*4+2, i*4+3, i*4+4))
		valueArgs = append(valueArgs, m.PostID, m.MediaURL, m.MediaType, m.Position)
	}

	query := fmt.Sprintf(`
		INSERT INTO post_media (post_id, media_url, media_type, position)
		VALUES %s`, strings.Join(valueStrings, ","))

	if _, err := r.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to add post media: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetPostByID(ctx context.Context, postID int64) (*Post, error) {
	query := `
		SELECT
			p.id, p.user_id, p.caption, p.created_at,
			u.username, u.profile_image,
			COUNT(DISTINCT l.user_id) AS likes_count,
			COUNT(DISTINCT c.id) AS comments_count
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN post_likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
		WHERE p.id = $1
		GROUP BY p.id, u.username, u.profile_image`

	post := &Post{Author: &AuthorInfo{}}
	err := r.db.QueryRowContext(ctx, query, postID).Scan(
		&post.ID, &post.UserID, &post.Caption, &post.CreatedAt,
		&post.Author.Username, &post.Author.ProfileImage,
		&post.LikesCount, &post.CommentsCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.Author.ID = post.UserID

	media, err := r.GetMediaForPosts(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	post.Media = media[postID]
	if post.Media == nil {
		post.Media = []PostMedia{}
	}

	return post, nil
}

func (r *postgresRepository) GetPostOwner(ctx context.Context, postID int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, fmt.Errorf("failed to get post owner: %w", err)
	}
	return ownerID, nil
}

func (r *postgresRepository) GetMediaForPosts(ctx context.Context, postIDs []int64) (map[int64][]PostMedia, error) {
	result := make(map[int64][]PostMedia)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, media_url, media_type, position
		FROM post_media
		WHERE post_id = ANY($1)
		ORDER BY post_id, position`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get post media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m PostMedia
		if err := rows.Scan(&m.ID, &m.PostID, &m.MediaURL, &m.MediaType, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan post media: %w", err)
		}
		result[m.PostID] = append(result[m.PostID], m)
	}

	return result, rows.Err()
}

func (r *postgresRepository) ListPosts(ctx context.Context, limit, offset int) ([]Post, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `
		SELECT
			p.id, p.user_id, p.caption, p.created_at,
			u.username, u.profile_image,
			COUNT(DISTINCT l.user_id) AS likes_count,
			COUNT(DISTINCT c.id) AS comments_count
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN post_likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
		GROUP BY p.id, u.username, u.profile_image
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts, err := r.scanPosts(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postgresRepository) ListUserPosts(ctx context.Context, userID int64, limit, offset int) ([]Post, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count user posts: %w", err)
	}

	query := `
		SELECT
			p.id, p.user_id, p.caption, p.created_at,
			u.username, u.profile_image,
			COUNT(DISTINCT l.user_id) AS likes_count,
			COUNT(DISTINCT c.id) AS comments_count
		FROM posts p
		JOIN users u ON p.user_id = u.id
		LEFT JOIN post_likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
		WHERE p.user_id = $1
		GROUP BY p.id, u.username, u.profile_image
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user posts: %w", err)
	}
	defer rows.Close()

	posts, err := r.scanPosts(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// scanPosts reads post rows and backfills media in one batched query
func (r *postgresRepository) scanPosts(ctx context.Context, rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		post := Post{Author: &AuthorInfo{}}
		err := rows.Scan(
			&post.ID, &post.UserID, &post.Caption, &post.CreatedAt,
			&post.Author.Username, &post.Author.ProfileImage,
			&post.LikesCount, &post.CommentsCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Author.ID = post.UserID
		post.Media = []PostMedia{}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	postIDs := make([]int64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	mediaByPost, err := r.GetMediaForPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if media, ok := mediaByPost[posts[i].ID]; ok {
			posts[i].Media = media
		}
	}

	return posts, nil
}

func (r *postgresRepository) UpdatePostCaption(ctx context.Context, postID int64, caption string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET caption = $1 WHERE id = $2`, caption, postID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) DeletePost(ctx context.Context, postID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Likes on this post's comments go first, then the comments themselves
	_, err = tx.ExecContext(ctx, `
		DELETE FROM comment_likes
		WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete comment likes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to delete post likes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM post_media WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to delete post media: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}

	return tx.Commit()
}

// TogglePostLike inserts the like; if the (post_id, user_id) key already
// exists the insert affects zero rows and the like is removed instead.
// The primary key serializes concurrent toggles for the same pair.
func (r *postgresRepository) TogglePostLike(ctx context.Context, postID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrPostNotFound
		}
		return false, fmt.Errorf("failed to like post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", err)
	}
	return false, nil
}

func (r *postgresRepository) CreateComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, parent_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.PostID, comment.UserID, comment.ParentID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCommentByID(ctx context.Context, commentID int64) (*Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content, c.created_at,
		       u.username, u.profile_image,
		       COUNT(cl.user_id) AS likes_count
		FROM comments c
		JOIN users u ON c.user_id = u.id
		LEFT JOIN comment_likes cl ON cl.comment_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, u.username, u.profile_image`

	comment := &Comment{Author: &AuthorInfo{}, Replies: []*Comment{}}
	err := r.db.QueryRowContext(ctx, query, commentID).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.ParentID,
		&comment.Content, &comment.CreatedAt,
		&comment.Author.Username, &comment.Author.ProfileImage,
		&comment.LikesCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	comment.Author.ID = comment.UserID
	return comment, nil
}

// ListPostComments fetches every comment of the post with its like count in
// a single round trip; tree assembly happens in memory afterwards.
func (r *postgresRepository) ListPostComments(ctx context.Context, postID int64) ([]*Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content, c.created_at,
		       u.username, u.profile_image,
		       COUNT(cl.user_id) AS likes_count
		FROM comments c
		JOIN users u ON c.user_id = u.id
		LEFT JOIN comment_likes cl ON cl.comment_id = c.id
		WHERE c.post_id = $1
		GROUP BY c.id, u.username, u.profile_image
		ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment := &Comment{Author: &AuthorInfo{}, Replies: []*Comment{}}
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.UserID, &comment.ParentID,
			&comment.Content, &comment.CreatedAt,
			&comment.Author.Username, &comment.Author.ProfileImage,
			&comment.LikesCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.Author.ID = comment.UserID
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

func (r *postgresRepository) DeleteComment(ctx context.Context, commentID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The whole reply subtree goes, along with any likes on it
	subtree := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM comments WHERE id = $1
			UNION ALL
			SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
		)`

	_, err = tx.ExecContext(ctx, subtree+`
		DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM subtree)`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment likes: %w", err)
	}

	result, err := tx.ExecContext(ctx, subtree+`
		DELETE FROM comments WHERE id IN (SELECT id FROM subtree)`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCommentNotFound
	}

	return tx.Commit()
}

func (r *postgresRepository) ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO comment_likes (comment_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (comment_id, user_id) DO NOTHING`, commentID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrCommentNotFound
		}
		return false, fmt.Errorf("failed to like comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike comment: %w", err)
	}
	return false, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
