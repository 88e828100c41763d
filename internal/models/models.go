package models

import (
	"errors"
	"time"
)

// User represents an account on the VidTube platform. An account doubles as a
// channel that other accounts can subscribe to.
type User struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	Avatar        string    `json:"avatar"`
	AvatarKey     string    `json:"-"`
	CoverImage    string    `json:"coverImage"`
	CoverImageKey string    `json:"-"`
	Password      string    `json:"-"`
	RefreshToken  string    `json:"-"`
	WatchHistory  []string  `json:"watchHistory"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserSummary is the trimmed account view embedded in other resources.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Avatar   string `json:"avatar"`
}

// Summary returns the embeddable view of the account.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}

// ChannelProfile is an account seen as a channel by a viewer.
type ChannelProfile struct {
	User
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed              bool  `json:"isSubscribed"`
}

// Asset references a file persisted in the object store.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Video is an uploaded video and its metadata.
type Video struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	VideoFile   Asset        `json:"videoFile"`
	Thumbnail   Asset        `json:"thumbnail"`
	Duration    int64        `json:"time"`
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	OwnerID     string       `json:"owner"`
	Owner       *UserSummary `json:"ownerDetails,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Comment is a remark left by an account on a video.
type Comment struct {
	ID        string       `json:"_id"`
	Content   string       `json:"comment"`
	VideoID   string       `json:"video"`
	OwnerID   string       `json:"-"`
	Owner     *UserSummary `json:"owner,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Tweet is a short text post published by an account.
type Tweet struct {
	ID        string       `json:"_id"`
	Content   string       `json:"content"`
	OwnerID   string       `json:"-"`
	Owner     *UserSummary `json:"owner,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Playlist is an ordered, duplicate-free collection of videos curated by an account.
type Playlist struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner"`
	VideoIDs    []string  `json:"-"`
	Videos      []Video   `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription links a subscriber account to a channel account.
type Subscription struct {
	ID           string       `json:"_id"`
	SubscriberID string       `json:"-"`
	ChannelID    string       `json:"-"`
	Subscriber   *UserSummary `json:"subscriber,omitempty"`
	Channel      *UserSummary `json:"channel,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ChannelStats aggregates the activity of a channel.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalViews       int64 `json:"totalViews"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"-"`
}

// ErrInvalidLikeTarget is returned when a like target kind is not recognised.
var ErrInvalidLikeTarget = errors.New("invalid like target")
