package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresDashboardRepository aggregates channel statistics.
type PostgresDashboardRepository struct {
	pool db.Pool
}

// NewPostgresDashboardRepository constructs a dashboard repository backed by PostgreSQL.
func NewPostgresDashboardRepository(pool db.Pool) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{pool: pool}
}

// Stats returns the subscriber, video, like and view totals of channelID.
// Likes and views only count the channel's own videos.
func (r *PostgresDashboardRepository) Stats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.ChannelStats
	err = conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM videos WHERE owner_id = $1),
            (SELECT COUNT(*)
               FROM likes l
               JOIN videos v ON v.id = l.target_id
              WHERE l.target_kind = 'video' AND v.owner_id = $1),
            (SELECT COALESCE(SUM(views), 0)::BIGINT FROM videos WHERE owner_id = $1)
    `, channelID).Scan(&stats.TotalSubscribers, &stats.TotalVideos, &stats.TotalLikes, &stats.TotalViews)
	if err != nil {
		return models.ChannelStats{}, translate(err, "aggregate channel stats")
	}
	return stats, nil
}
