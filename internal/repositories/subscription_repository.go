package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes when already
// subscribed, in one statement. It reports whether the subscription exists afterwards.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var subscribed bool
	err = conn.QueryRow(ctx, `
        WITH removed AS (
            DELETE FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
            RETURNING id
        ), inserted AS (
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            SELECT $3::UUID, $1::UUID, $2::UUID, $4::TIMESTAMPTZ
            WHERE NOT EXISTS (SELECT 1 FROM removed)
            ON CONFLICT (subscriber_id, channel_id) DO NOTHING
            RETURNING id
        )
        SELECT EXISTS (SELECT 1 FROM inserted)
    `, subscriberID, channelID, uuid.NewString(), r.now()).Scan(&subscribed)
	if err != nil {
		return false, translate(err, "toggle subscription")
	}
	return subscribed, nil
}

// ListSubscribers returns the accounts subscribed to channelID, newest first.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, s.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC, s.id
    `, channelID, true)
}

// ListChannels returns the channels subscriberID follows, newest first.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT s.id, s.subscriber_id, s.channel_id, s.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC, s.id
    `, subscriberID, false)
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, query, id string, subscribers bool) ([]models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, translate(err, "query subscriptions")
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		var (
			sub     models.Subscription
			summary models.UserSummary
		)
		if err := rows.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt,
			&summary.ID, &summary.Username, &summary.FullName, &summary.Avatar); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if subscribers {
			sub.Subscriber = &summary
		} else {
			sub.Channel = &summary
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}
