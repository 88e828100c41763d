package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Toggle removes the like of userID on target when present and adds it
// otherwise, in one statement. It reports whether the like exists afterwards.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, userID string, target models.LikeTarget) (bool, error) {
	if !target.Valid() {
		return false, models.ErrInvalidLikeTarget
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var liked bool
	err = conn.QueryRow(ctx, `
        WITH removed AS (
            DELETE FROM likes
            WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
            RETURNING id
        ), inserted AS (
            INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
            SELECT $4::UUID, $1::UUID, $2::TEXT, $3::UUID, $5::TIMESTAMPTZ
            WHERE NOT EXISTS (SELECT 1 FROM removed)
            ON CONFLICT (liked_by, target_kind, target_id) DO NOTHING
            RETURNING id
        )
        SELECT EXISTS (SELECT 1 FROM inserted)
    `, userID, string(target.Kind()), target.ID(), uuid.NewString(), r.now()).Scan(&liked)
	if err != nil {
		return false, translate(err, "toggle like")
	}
	return liked, nil
}

// CountLikedVideos returns how many videos userID likes.
func (r *PostgresLikeRepository) CountLikedVideos(ctx context.Context, userID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
          AND (v.is_published OR v.owner_id = $1)
    `, userID).Scan(&total)
	if err != nil {
		return 0, translate(err, "count liked videos")
	}
	return total, nil
}

// ListLikedVideos returns one page of the videos userID likes, most recently liked first.
// Unpublished videos of other channels are skipped.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string, limit, offset int) ([]models.LikedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT l.id, l.liked_by, l.created_at,`+videoColumns+videoFrom+`
        JOIN likes l ON l.target_id = v.id AND l.target_kind = 'video'
        WHERE l.liked_by = $1 AND (v.is_published OR v.owner_id = $1)
        ORDER BY l.created_at DESC, l.id
        LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, translate(err, "query liked videos")
	}
	defer rows.Close()

	liked := []models.LikedVideo{}
	for rows.Next() {
		var (
			item  models.LikedVideo
			owner models.UserSummary
			video = &item.Video
		)
		if err := rows.Scan(&item.ID, &item.LikedBy, &item.CreatedAt,
			&video.ID, &video.Title, &video.Description,
			&video.VideoFile.URL, &video.VideoFile.PublicID,
			&video.Thumbnail.URL, &video.Thumbnail.PublicID,
			&video.Duration, &video.Views, &video.IsPublished, &video.OwnerID,
			&video.CreatedAt, &video.UpdatedAt,
			&owner.Username, &owner.FullName, &owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		owner.ID = video.OwnerID
		video.Owner = &owner
		liked = append(liked, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}
	return liked, nil
}
