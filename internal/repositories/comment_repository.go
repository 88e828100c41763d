package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

const commentSelect = `
    SELECT c.id, c.content, c.video_id, c.owner_id, c.created_at, c.updated_at,
           u.username, u.full_name, u.avatar_url
    FROM comments c
    JOIN users u ON u.id = c.owner_id`

func scanComment(row pgx.Row) (models.Comment, error) {
	var (
		comment models.Comment
		owner   models.UserSummary
	)
	if err := row.Scan(&comment.ID, &comment.Content, &comment.VideoID, &comment.OwnerID,
		&comment.CreatedAt, &comment.UpdatedAt, &owner.Username, &owner.FullName, &owner.Avatar); err != nil {
		return models.Comment{}, err
	}
	owner.ID = comment.OwnerID
	comment.Owner = &owner
	return comment, nil
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create stores a new comment. A missing video yields ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	return translate(err, "insert comment")
}

// FindByID fetches a comment with its owner populated.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return models.Comment{}, translate(err, "select comment")
	}
	return comment, nil
}

// UpdateContent replaces the text of a comment.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`, id, content, at)
	if err != nil {
		return translate(err, "update comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment and the likes on it.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var deleted int64
	err = conn.QueryRow(ctx, `
        WITH likes_removed AS (
            DELETE FROM likes WHERE target_kind = 'comment' AND target_id = $1
        ), removed AS (
            DELETE FROM comments WHERE id = $1 RETURNING id
        )
        SELECT COUNT(*) FROM removed
    `, id).Scan(&deleted)
	if err != nil {
		return translate(err, "delete comment")
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByVideo returns the number of comments on a video.
func (r *PostgresCommentRepository) CountByVideo(ctx context.Context, videoID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return 0, translate(err, "count comments")
	}
	return total, nil
}

// ListByVideo returns one page of comments on a video, newest first.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, commentSelect+`
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC, c.id
        LIMIT $2 OFFSET $3`, videoID, limit, offset)
	if err != nil {
		return nil, translate(err, "query comments")
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}
