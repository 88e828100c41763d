package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
)

// SubscriptionHandler serves channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

type subscribersResponse struct {
	Subscribers      int                   `json:"Subscribers"`
	TotalSubscribers []models.Subscription `json:"totalSubscribers"`
}

type channelsResponse struct {
	Channels      int                   `json:"Channels"`
	TotalChannels []models.Subscription `json:"totalChannels"`
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	channelID, err := idParam(r, "channelId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if auth.IsOwner(channelID, user.ID) {
		respond.Error(ctx, w, apierror.New(apierror.KindInvalidArgument, "you cannot subscribe to your own channel"))
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respond.Error(ctx, w, apierror.NotFound("channel"))
			return
		}
		respond.Error(ctx, w, err)
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	metrics.RecordToggle("subscription", subscribed)

	message := "unsubscribed"
	if subscribed {
		message = "subscribed successfully"
	}
	respond.Success(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, err := idParam(r, "channelId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	subscribers, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, subscribersResponse{
		Subscribers:      len(subscribers),
		TotalSubscribers: subscribers,
	}, "subscribers fetched successfully")
}

// Channels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, err := idParam(r, "subscriberId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	channels, err := h.Subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, channelsResponse{
		Channels:      len(channels),
		TotalChannels: channels,
	}, "channels fetched successfully")
}
