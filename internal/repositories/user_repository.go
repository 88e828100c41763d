package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for accounts.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userSelect = `
    SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.avatar_key,
           u.cover_image_url, u.cover_image_key, u.password_hash, u.refresh_token,
           u.created_at, u.updated_at,
           ARRAY(SELECT w.video_id::TEXT FROM watch_history w WHERE w.user_id = u.id ORDER BY w.watched_at DESC)
    FROM users u`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Avatar, &user.AvatarKey, &user.CoverImage, &user.CoverImageKey,
		&user.Password, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt,
		&user.WatchHistory,
	)
	if user.WatchHistory == nil {
		user.WatchHistory = []string{}
	}
	return user, err
}

// Create persists a new account. Duplicate usernames or emails yield ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, avatar_url, avatar_key,
                           cover_image_url, cover_image_key, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.AvatarKey,
		user.CoverImage, user.CoverImageKey, user.Password, user.CreatedAt, user.UpdatedAt)
	return translate(err, "insert user")
}

// FindByID fetches an account by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return models.User{}, translate(err, "select user by id")
	}
	return user, nil
}

// FindByLogin fetches the account whose username or email matches.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, username, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, userSelect+`
        WHERE ($1 <> '' AND u.username = $1) OR ($2 <> '' AND u.email = $2)
        LIMIT 1`, username, email))
	if err != nil {
		return models.User{}, translate(err, "select user by login")
	}
	return user, nil
}

// UpdateAccount changes the display name and email of an account.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string, at time.Time) (models.User, error) {
	return r.update(ctx, "update account", `
        UPDATE users SET full_name = $2, email = $3, updated_at = $4 WHERE id = $1
    `, id, fullName, email, at)
}

// UpdatePassword stores a new password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	_, err := r.update(ctx, "update password", `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, hash, at)
	return err
}

// UpdateAvatar replaces the avatar of an account.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar models.Asset, at time.Time) (models.User, error) {
	return r.update(ctx, "update avatar", `
        UPDATE users SET avatar_url = $2, avatar_key = $3, updated_at = $4 WHERE id = $1
    `, id, avatar.URL, avatar.PublicID, at)
}

// UpdateCoverImage replaces the cover image of an account.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id string, cover models.Asset, at time.Time) (models.User, error) {
	return r.update(ctx, "update cover image", `
        UPDATE users SET cover_image_url = $2, cover_image_key = $3, updated_at = $4 WHERE id = $1
    `, id, cover.URL, cover.PublicID, at)
}

func (r *PostgresUserRepository) update(ctx context.Context, action, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return models.User{}, translate(err, action)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, ErrNotFound
	}

	user, err := scanUser(conn.QueryRow(ctx, userSelect+` WHERE u.id = $1`, args[0]))
	if err != nil {
		return models.User{}, translate(err, "reload user")
	}
	return user, nil
}

// SaveRefreshToken stores the active refresh token; an empty token signs the account out.
func (r *PostgresUserRepository) SaveRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return translate(err, "save refresh token")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindRefreshToken returns the stored refresh token of an account.
func (r *PostgresUserRepository) FindRefreshToken(ctx context.Context, userID string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var token string
	if err := conn.QueryRow(ctx, `SELECT refresh_token FROM users WHERE id = $1`, userID).Scan(&token); err != nil {
		return "", translate(err, "select refresh token")
	}
	return token, nil
}

// ChannelProfile loads the account named username as seen by viewerID.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		return models.ChannelProfile{}, translate(err, "select channel")
	}

	profile := models.ChannelProfile{User: user}
	err = conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1),
            EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)
    `, user.ID, viewerID).Scan(&profile.SubscribersCount, &profile.ChannelsSubscribedToCount, &profile.IsSubscribed)
	if err != nil {
		return models.ChannelProfile{}, translate(err, "count channel subscriptions")
	}
	return profile, nil
}
