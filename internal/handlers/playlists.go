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

// PlaylistHandler serves playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     user.ID,
		VideoIDs:    []string{},
		Videos:      []models.Video{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respond.Error(ctx, w, apierror.Internal("playlist was not created", err))
		return
	}

	respond.Success(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "playlistId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlist, err := h.findPlaylist(r, id, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListByUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	ownerID, err := idParam(r, "userId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, ownerID, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "playlistId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlist, err := h.ownedPlaylist(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	if err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description, now); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	playlist.Name = req.Name
	playlist.Description = req.Description
	playlist.UpdatedAt = now

	respond.Success(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "playlistId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlist, err := h.ownedPlaylist(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}. Adding
// a video that is already in the playlist leaves it unchanged.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlistID, err := idParam(r, "playlistId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if _, err := idParam(r, "videoId"); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlist, err := h.ownedPlaylist(r, playlistID, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := loadVisibleVideo(r, h.Videos, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, video.ID, nowFrom(h.NowFunc)); err != nil {
		respond.Error(ctx, w, apierror.Internal("failed to add video to playlist", err))
		return
	}

	h.respondPlaylist(w, r, playlist.ID, user.ID, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
// Removing a video that is not in the playlist is a no-op.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlistID, err := idParam(r, "playlistId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	videoID, err := idParam(r, "videoId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	playlist, err := h.ownedPlaylist(r, playlistID, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID, nowFrom(h.NowFunc)); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	h.respondPlaylist(w, r, playlist.ID, user.ID, "video removed from playlist")
}

func (h PlaylistHandler) respondPlaylist(w http.ResponseWriter, r *http.Request, id, viewerID, message string) {
	playlist, err := h.findPlaylist(r, id, viewerID)
	if err != nil {
		respond.Error(r.Context(), w, err)
		return
	}
	respond.Success(r.Context(), w, http.StatusOK, playlist, message)
}

func (h PlaylistHandler) findPlaylist(r *http.Request, id, viewerID string) (models.Playlist, error) {
	playlist, err := h.Playlists.FindByID(r.Context(), id, viewerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Playlist{}, apierror.NotFound("playlist")
	}
	return playlist, err
}

func (h PlaylistHandler) ownedPlaylist(r *http.Request, id string, user models.User) (models.Playlist, error) {
	playlist, err := h.findPlaylist(r, id, user.ID)
	if err != nil {
		return models.Playlist{}, err
	}
	if err := auth.RequireOwner(playlist.OwnerID, user.ID, "playlist"); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}
