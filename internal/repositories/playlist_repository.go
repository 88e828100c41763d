package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create stores a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	return translate(err, "insert playlist")
}

// FindByID fetches a playlist with the videos viewerID may see, in insertion order.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id, viewerID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var playlist models.Playlist
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id).Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		return models.Playlist{}, translate(err, "select playlist")
	}

	if err := loadPlaylistVideos(ctx, conn, &playlist, viewerID); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

// ListByOwner returns the playlists of ownerID, newest first, with the videos
// viewerID may see.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE owner_id = $1
        ORDER BY created_at DESC, id
    `, ownerID)
	if err != nil {
		return nil, translate(err, "query playlists")
	}

	playlists := []models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for i := range playlists {
		if err := loadPlaylistVideos(ctx, conn, &playlists[i], viewerID); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Update changes the name and description of a playlist.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists SET name = $2, description = $3, updated_at = $4 WHERE id = $1
    `, id, name, description, at)
	if err != nil {
		return translate(err, "update playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a playlist; its entries cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends videoID to the playlist. Adding a video already present is a no-op.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID, at)
	if err != nil {
		return translate(err, "add playlist video")
	}
	_, err = conn.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at)
	return translate(err, "touch playlist")
}

// RemoveVideo drops videoID from the playlist. Removing an absent video is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlistID, videoID)
	if err != nil {
		return translate(err, "remove playlist video")
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	_, err = conn.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at)
	return translate(err, "touch playlist")
}

func loadPlaylistVideos(ctx context.Context, conn *pgxpool.Conn, playlist *models.Playlist, viewerID string) error {
	rows, err := conn.Query(ctx, `SELECT`+videoColumns+videoFrom+`
        JOIN playlist_videos pv ON pv.video_id = v.id
        WHERE pv.playlist_id = $1 AND (v.is_published OR v.owner_id = $2)
        ORDER BY pv.added_at, v.id`, playlist.ID, viewerID)
	if err != nil {
		return translate(err, "query playlist videos")
	}
	videos, err := collectVideos(rows)
	if err != nil {
		return fmt.Errorf("scan playlist videos: %w", err)
	}

	playlist.Videos = videos
	playlist.VideoIDs = make([]string, len(videos))
	for i, v := range videos {
		playlist.VideoIDs[i] = v.ID
	}
	return nil
}
