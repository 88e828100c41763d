package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
	"github.com/vidtube/backend/internal/validation"
)

// TweetHandler serves tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content" validate:"required"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	summary := user.Summary()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Content:   req.Content,
		OwnerID:   user.ID,
		Owner:     &summary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respond.Error(ctx, w, apierror.Internal("failed to create tweet, please try again", err))
		return
	}

	respond.Success(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// ListByUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := idParam(r, "userId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	tweets, err := h.Tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "tweetId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	tweet, err := h.ownedTweet(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	if err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content, now); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	tweet.Content = req.Content
	tweet.UpdatedAt = now

	respond.Success(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "tweetId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	tweet, err := h.ownedTweet(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, struct{}{}, "tweet deleted successfully")
}

func (h TweetHandler) ownedTweet(r *http.Request, id string, user models.User) (models.Tweet, error) {
	tweet, err := h.Tweets.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Tweet{}, apierror.NotFound("tweet")
		}
		return models.Tweet{}, err
	}
	if err := auth.RequireOwner(tweet.OwnerID, user.ID, "tweet"); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}
