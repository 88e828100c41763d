package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
	"github.com/vidtube/backend/internal/validation"
)

// UserHandler serves the profile endpoints of the authenticated account.
type UserHandler struct {
	Users          UserStore
	Videos         VideoStore
	Media          MediaStore
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	respond.Success(ctx, w, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	updated, err := h.Users.UpdateAccount(ctx, user.ID, req.FullName, strings.ToLower(req.Email), nowFrom(h.NowFunc))
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respond.Error(ctx, w, apierror.New(apierror.KindConflict, "email is already in use"))
			return
		}
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", media.FolderAvatars,
		func(u models.User) models.Asset { return models.Asset{URL: u.Avatar, PublicID: u.AvatarKey} },
		h.Users.UpdateAvatar,
		"avatar image updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", media.FolderCovers,
		func(u models.User) models.Asset { return models.Asset{URL: u.CoverImage, PublicID: u.CoverImageKey} },
		h.Users.UpdateCoverImage,
		"cover image updated successfully")
}

// replaceImage uploads the file in field, stores it on the account and reaps
// the asset it replaced.
func (h UserHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field, folder string,
	current func(models.User) models.Asset,
	save func(ctx context.Context, id string, asset models.Asset, at time.Time) (models.User, error),
	message string,
) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	cleanup, err := parseMultipart(w, r, h.MaxUploadBytes)
	defer cleanup()
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	upload, err := requireFile(r, field)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	defer closeUploads(upload)

	asset, err := h.Media.Store(ctx, folder, upload)
	if err != nil {
		respond.Error(ctx, w, apierror.Internal("error while uploading "+field, err))
		return
	}

	updated, err := save(ctx, user.ID, asset, nowFrom(h.NowFunc))
	if err != nil {
		h.Media.Discard(ctx, asset)
		respond.Error(ctx, w, err)
		return
	}

	h.Media.Discard(ctx, current(user))
	respond.Success(ctx, w, http.StatusOK, updated, message)
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
	if username == "" {
		respond.Error(ctx, w, apierror.MissingField("username"))
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewer.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respond.Error(ctx, w, apierror.New(apierror.KindNotFound, "channel does not exist"))
			return
		}
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, profile, "user channel fetched successfully")
}

// WatchHistory handles GET /api/v1/users/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	videos, err := h.Videos.WatchHistory(ctx, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, videos, "watch history fetched successfully")
}
