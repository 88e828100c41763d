package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
)

// LikeHandler serves like toggles and the liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", "video", models.VideoTarget, func(ctx context.Context, id string) error {
		video, err := h.Videos.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if viewer, _ := auth.PrincipalFromContext(ctx); !video.IsPublished && !auth.IsOwner(video.OwnerID, viewer.ID) {
			return repositories.ErrNotFound
		}
		return nil
	})
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", "comment", models.CommentTarget, func(ctx context.Context, id string) error {
		_, err := h.Comments.FindByID(ctx, id)
		return err
	})
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", "tweet", models.TweetTarget, func(ctx context.Context, id string) error {
		_, err := h.Tweets.FindByID(ctx, id)
		return err
	})
}

// toggle validates the target id, checks the target exists and flips the like.
func (h LikeHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	param, resource string,
	target func(id string) models.LikeTarget,
	exists func(ctx context.Context, id string) error,
) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, param)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := exists(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respond.Error(ctx, w, apierror.NotFound(resource))
			return
		}
		respond.Error(ctx, w, err)
		return
	}

	liked, err := h.Likes.Toggle(ctx, user.ID, target(id))
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	metrics.RecordToggle("like_"+resource, liked)

	message := resource + " unliked"
	if liked {
		message = resource + " liked"
	}
	respond.Success(ctx, w, http.StatusOK, map[string]bool{"isLiked": liked}, message)
}

// LikedVideos handles GET /api/v1/likes/videos, most recently liked first.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	page := pagination.FromQuery(r.URL.Query())
	total, err := h.Likes.CountLikedVideos(ctx, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	meta, ok := page.Compute(total)
	if !ok {
		respond.PageNotFound(ctx, w, page.Page)
		return
	}

	liked, err := h.Likes.ListLikedVideos(ctx, user.ID, page.Limit, page.Offset())
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, pagination.Payload(liked, meta), "liked videos fetched successfully")
}
