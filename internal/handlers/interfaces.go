package handlers

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserStore captures the account persistence used by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string, at time.Time) (models.User, error)
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Asset, at time.Time) (models.User, error)
	UpdateCoverImage(ctx context.Context, id string, cover models.Asset, at time.Time) (models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

// SessionManager issues, rotates and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string, load func(ctx context.Context, userID string) (models.User, error)) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// VideoStore captures persistence for videos, views and watch history.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublished(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter repositories.VideoFilter) (int64, error)
	List(ctx context.Context, filter repositories.VideoFilter, limit, offset int) ([]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	RecordView(ctx context.Context, videoID, viewerID string, at time.Time) error
	WatchHistory(ctx context.Context, userID string) ([]models.Video, error)
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, at time.Time) error
	Delete(ctx context.Context, id string) error
	CountByVideo(ctx context.Context, videoID string) (int64, error)
	ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, error)
}

// LikeStore captures persistence for likes.
type LikeStore interface {
	Toggle(ctx context.Context, userID string, target models.LikeTarget) (bool, error)
	CountLikedVideos(ctx context.Context, userID string) (int64, error)
	ListLikedVideos(ctx context.Context, userID string, limit, offset int) ([]models.LikedVideo, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
}

// PlaylistStore captures persistence for playlists and their entries.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id, viewerID string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string, at time.Time) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
	RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) error
}

// SubscriptionStore captures persistence for channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.Subscription, error)
}

// StatsStore aggregates channel statistics.
type StatsStore interface {
	Stats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// MediaStore uploads files, probes durations and schedules deletion of
// replaced assets.
type MediaStore interface {
	Store(ctx context.Context, folder string, upload media.Upload) (models.Asset, error)
	Duration(ctx context.Context, upload media.Upload) int64
	Discard(ctx context.Context, assets ...models.Asset)
}
