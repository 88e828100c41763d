package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// VideoFilter narrows the video listing.
type VideoFilter struct {
	Query    string
	OwnerID  string
	ViewerID string
	SortBy   string
	SortDesc bool
}

var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

// where renders the filter as SQL; unpublished videos are only visible to their owner.
func (f VideoFilter) where() (string, []any) {
	clauses := []string{"(v.is_published OR v.owner_id = $1)"}
	args := []any{f.ViewerID}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", n, n))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		clauses = append(clauses, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (f VideoFilter) orderBy() string {
	column, ok := videoSortColumns[f.SortBy]
	if !ok {
		column = "v.created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, v.id", column, direction)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key,
                            duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoFile.URL, video.VideoFile.PublicID,
		video.Thumbnail.URL, video.Thumbnail.PublicID, video.Duration, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	return translate(err, "insert video")
}

// FindByID fetches a video with its owner populated.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT`+videoColumns+videoFrom+` WHERE v.id = $1`, id))
	if err != nil {
		return models.Video{}, translate(err, "select video")
	}
	return video, nil
}

// Update writes the editable fields of video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_key = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Thumbnail.URL, video.Thumbnail.PublicID, video.UpdatedAt)
	if err != nil {
		return translate(err, "update video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TogglePublished flips the published flag and returns the new value.
func (r *PostgresVideoRepository) TogglePublished(ctx context.Context, id string, at time.Time) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var published bool
	err = conn.QueryRow(ctx, `
        UPDATE videos SET is_published = NOT is_published, updated_at = $2
        WHERE id = $1
        RETURNING is_published
    `, id, at).Scan(&published)
	if err != nil {
		return false, translate(err, "toggle publish")
	}
	return published, nil
}

// Delete removes a video together with the likes on it and on its comments.
// Comments, playlist entries and watch history rows cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var deleted int64
	err = conn.QueryRow(ctx, `
        WITH comment_likes AS (
            DELETE FROM likes
            WHERE target_kind = 'comment'
              AND target_id IN (SELECT id FROM comments WHERE video_id = $1)
        ), video_likes AS (
            DELETE FROM likes WHERE target_kind = 'video' AND target_id = $1
        ), removed AS (
            DELETE FROM videos WHERE id = $1 RETURNING id
        )
        SELECT COUNT(*) FROM removed
    `, id).Scan(&deleted)
	if err != nil {
		return translate(err, "delete video")
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of videos matching filter.
func (r *PostgresVideoRepository) Count(ctx context.Context, filter VideoFilter) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where, args := filter.where()
	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM videos v`+where, args...).Scan(&total); err != nil {
		return 0, translate(err, "count videos")
	}
	return total, nil
}

// List returns one page of videos matching filter.
func (r *PostgresVideoRepository) List(ctx context.Context, filter VideoFilter, limit, offset int) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where, args := filter.where()
	args = append(args, limit, offset)
	query := `SELECT` + videoColumns + videoFrom + where + filter.orderBy() +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "query videos")
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, translate(err, "scan videos")
	}
	return videos, nil
}

// ListByOwner returns every video of ownerID, newest first, published or not.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT`+videoColumns+videoFrom+`
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC, v.id`, ownerID)
	if err != nil {
		return nil, translate(err, "query channel videos")
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, translate(err, "scan channel videos")
	}
	return videos, nil
}

// RecordView increments the view count and moves the video to the front of
// the viewer's watch history.
func (r *PostgresVideoRepository) RecordView(ctx context.Context, videoID, viewerID string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID)
	if err != nil {
		return translate(err, "increment views")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if viewerID == "" {
		return nil
	}
	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, viewerID, videoID, at)
	return translate(err, "record watch history")
}

// WatchHistory returns the videos userID watched, most recent first, leaving out
// videos another channel has since unpublished.
func (r *PostgresVideoRepository) WatchHistory(ctx context.Context, userID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT`+videoColumns+videoFrom+`
        JOIN watch_history w ON w.video_id = v.id
        WHERE w.user_id = $1 AND (v.is_published OR v.owner_id = $1)
        ORDER BY w.watched_at DESC`, userID)
	if err != nil {
		return nil, translate(err, "query watch history")
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return nil, translate(err, "scan watch history")
	}
	return videos, nil
}
