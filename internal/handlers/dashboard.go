package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/respond"
)

// DashboardHandler serves the statistics of the authenticated channel.
type DashboardHandler struct {
	Stats  StatsStore
	Videos VideoStore
}

// ChannelStats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	stats, err := h.Stats.Stats(ctx, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// ChannelVideos handles GET /api/v1/dashboard/videos. Unpublished videos are included.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	videos, err := h.Videos.ListByOwner(ctx, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, videos, "fetched all videos of the channel successfully")
}
