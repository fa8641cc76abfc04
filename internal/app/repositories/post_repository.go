package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
)

// IPostRepository defines feed persistence
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, int64, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error

	// Like and Unlike report whether the call changed anything
	Like(ctx context.Context, postID, userID int64) (bool, error)
	Unlike(ctx context.Context, postID, userID int64) (bool, error)
	AddComment(ctx context.Context, comment *models.PostComment) error
	ListComments(ctx context.Context, postID int64) ([]*models.PostComment, error)
}

// PostRepository handles post database operations
type PostRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db, sb: newBuilder()}
}

func (r *PostRepository) selectPosts(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.university_id", "p.author_id",
		"u.first_name AS author_first_name", "u.last_name AS author_last_name",
		"p.content", "p.like_count", "p.comment_count", "p.created_at", "p.updated_at",
	).
		Column("EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked_by_me", viewerID).
		From("posts p").
		Join("users u ON u.id = p.author_id")
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := r.sb.Insert("posts").
		Columns("university_id", "author_id", "content").
		Values(post.UniversityID, post.AuthorID, post.Content).
		Suffix("RETURNING id, like_count, comment_count, created_at, updated_at")

	if err := scanInto(ctx, r.db, query, nil, &post.ID, &post.LikeCount, &post.CommentCount, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post as seen by viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	return queryOne[models.Post](ctx, r.db, r.selectPosts(viewerID).Where(squirrel.Eq{"p.id": id}), apperrors.ErrPostNotFound)
}

// List returns a page of the feed, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, int64, error) {
	where := squirrel.Eq{"p.university_id": filter.UniversityID}
	if filter.AuthorID > 0 {
		where["p.author_id"] = filter.AuthorID
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("posts p").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	query := r.selectPosts(filter.ViewerID).
		Where(where).
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	posts, err := queryAll[models.Post](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, total, nil
}

// UpdateContent replaces the text of a post
func (r *PostRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	n, err := exec(ctx, r.db, r.sb.Update("posts").
		Set("content", content).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}
	if n == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// Delete removes a post with its likes and comments
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("posts").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if n == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// Like records a like and increments the counter in the same transaction
func (r *PostRepository) Like(ctx context.Context, postID, userID int64) (bool, error) {
	var changed bool
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := exec(ctx, tx, r.sb.Insert("post_likes").
			Columns("post_id", "user_id").
			Values(postID, userID).
			Suffix("ON CONFLICT (post_id, user_id) DO NOTHING"))
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrPostNotFound
			}
			return fmt.Errorf("error liking post: %w", err)
		}
		if n == 0 {
			return nil
		}
		changed = true
		_, err = exec(ctx, tx, r.sb.Update("posts").
			Set("like_count", squirrel.Expr("like_count + 1")).
			Where(squirrel.Eq{"id": postID}))
		return err
	})
	return changed, err
}

// Unlike removes a like and decrements the counter in the same transaction
func (r *PostRepository) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	var changed bool
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := exec(ctx, tx, r.sb.Delete("post_likes").Where(squirrel.Eq{"post_id": postID, "user_id": userID}))
		if err != nil {
			return fmt.Errorf("error unliking post: %w", err)
		}
		if n == 0 {
			return nil
		}
		changed = true
		_, err = exec(ctx, tx, r.sb.Update("posts").
			Set("like_count", squirrel.Expr("GREATEST(like_count - 1, 0)")).
			Where(squirrel.Eq{"id": postID}))
		return err
	})
	return changed, err
}

// AddComment stores a comment and increments the counter in the same transaction
func (r *PostRepository) AddComment(ctx context.Context, comment *models.PostComment) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := r.sb.Insert("post_comments").
			Columns("post_id", "author_id", "content").
			Values(comment.PostID, comment.AuthorID, comment.Content).
			Suffix("RETURNING id, created_at")

		if err := scanInto(ctx, tx, query, nil, &comment.ID, &comment.CreatedAt); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrPostNotFound
			}
			return fmt.Errorf("error creating comment: %w", err)
		}

		_, err := exec(ctx, tx, r.sb.Update("posts").
			Set("comment_count", squirrel.Expr("comment_count + 1")).
			Where(squirrel.Eq{"id": comment.PostID}))
		return err
	})
}

// ListComments returns the comments of a post, oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID int64) ([]*models.PostComment, error) {
	query := r.sb.Select(
		"c.id", "c.post_id", "c.author_id",
		"u.first_name AS author_first_name", "u.last_name AS author_last_name",
		"c.content", "c.created_at",
	).
		From("post_comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.post_id": postID}).
		OrderBy("c.created_at ASC", "c.id ASC")
	return queryAll[models.PostComment](ctx, r.db, query)
}
