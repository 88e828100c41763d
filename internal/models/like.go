package models

import "time"

// LikeKind names the kind of resource a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// LikeTarget identifies exactly one likeable resource. Build it with
// VideoTarget, CommentTarget or TweetTarget.
type LikeTarget struct {
	kind LikeKind
	id   string
}

// VideoTarget points a like at a video.
func VideoTarget(id string) LikeTarget { return LikeTarget{kind: LikeKindVideo, id: id} }

// CommentTarget points a like at a comment.
func CommentTarget(id string) LikeTarget { return LikeTarget{kind: LikeKindComment, id: id} }

// TweetTarget points a like at a tweet.
func TweetTarget(id string) LikeTarget { return LikeTarget{kind: LikeKindTweet, id: id} }

// Kind returns the resource kind.
func (t LikeTarget) Kind() LikeKind { return t.kind }

// ID returns the resource identifier.
func (t LikeTarget) ID() string { return t.id }

// Valid reports whether the target was built through one of the constructors.
func (t LikeTarget) Valid() bool { return t.kind != "" && t.id != "" }

// LikedVideo is a like on a video with the video populated.
type LikedVideo struct {
	ID        string    `json:"_id"`
	LikedBy   string    `json:"likedBy"`
	Video     Video     `json:"video"`
	CreatedAt time.Time `json:"createdAt"`
}
