package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

const tweetSelect = `
    SELECT t.id, t.content, t.owner_id, t.created_at, t.updated_at,
           u.username, u.full_name, u.avatar_url
    FROM tweets t
    JOIN users u ON u.id = t.owner_id`

// Create stores a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	return translate(err, "insert tweet")
}

// FindByID fetches a tweet with its owner populated.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var (
		tweet models.Tweet
		owner models.UserSummary
	)
	err = conn.QueryRow(ctx, tweetSelect+` WHERE t.id = $1`, id).Scan(
		&tweet.ID, &tweet.Content, &tweet.OwnerID, &tweet.CreatedAt, &tweet.UpdatedAt,
		&owner.Username, &owner.FullName, &owner.Avatar)
	if err != nil {
		return models.Tweet{}, translate(err, "select tweet")
	}
	owner.ID = tweet.OwnerID
	tweet.Owner = &owner
	return tweet, nil
}

// UpdateContent replaces the text of a tweet.
func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE tweets SET content = $2, updated_at = $3 WHERE id = $1`, id, content, at)
	if err != nil {
		return translate(err, "update tweet")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a tweet and the likes on it.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var deleted int64
	err = conn.QueryRow(ctx, `
        WITH likes_removed AS (
            DELETE FROM likes WHERE target_kind = 'tweet' AND target_id = $1
        ), removed AS (
            DELETE FROM tweets WHERE id = $1 RETURNING id
        )
        SELECT COUNT(*) FROM removed
    `, id).Scan(&deleted)
	if err != nil {
		return translate(err, "delete tweet")
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns every tweet of ownerID, newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, tweetSelect+`
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC, t.id`, ownerID)
	if err != nil {
		return nil, translate(err, "query tweets")
	}
	defer rows.Close()

	tweets := []models.Tweet{}
	for rows.Next() {
		var (
			tweet models.Tweet
			owner models.UserSummary
		)
		if err := rows.Scan(&tweet.ID, &tweet.Content, &tweet.OwnerID, &tweet.CreatedAt, &tweet.UpdatedAt,
			&owner.Username, &owner.FullName, &owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		owner.ID = tweet.OwnerID
		tweet.Owner = &owner
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}
