package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
	"github.com/vidtube/backend/internal/validation"
)

// VideoHandler serves video upload, listing and management endpoints.
type VideoHandler struct {
	Videos         VideoStore
	Media          MediaStore
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type publishVideoRequest struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description" validate:"required"`
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List handles GET /api/v1/videos. Supports page, limit, query, sortBy,
// sortType and userId query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	query := r.URL.Query()
	filter := repositories.VideoFilter{
		Query:    query.Get("query"),
		ViewerID: viewer.ID,
		SortBy:   query.Get("sortBy"),
		SortDesc: !strings.EqualFold(query.Get("sortType"), "asc"),
	}
	if owner := strings.TrimSpace(query.Get("userId")); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			respond.Error(ctx, w, apierror.InvalidID("userId"))
			return
		}
		filter.OwnerID = id.String()
	}

	page := pagination.FromQuery(query)
	total, err := h.Videos.Count(ctx, filter)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	meta, ok := page.Compute(total)
	if !ok {
		respond.PageNotFound(ctx, w, page.Page)
		return
	}

	videos, err := h.Videos.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, pagination.Payload(videos, meta), "videos fetched successfully")
}

// Publish handles POST /api/v1/videos with a multipart body carrying title,
// description, videoFile and thumbnail.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := principal(r)
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

	req := publishVideoRequest{Title: r.FormValue("title"), Description: r.FormValue("description")}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	videoFile, err := requireFile(r, "videoFile")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	thumbnailFile, err := requireFile(r, "thumbnail")
	defer closeUploads(videoFile, thumbnailFile)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	duration := h.Media.Duration(ctx, videoFile)

	videoAsset, err := h.Media.Store(ctx, media.FolderVideos, videoFile)
	if err != nil {
		respond.Error(ctx, w, apierror.Internal("video upload failed, please try again", err))
		return
	}
	thumbnailAsset, err := h.Media.Store(ctx, media.FolderThumbnails, thumbnailFile)
	if err != nil {
		h.Media.Discard(ctx, videoAsset)
		respond.Error(ctx, w, apierror.Internal("thumbnail upload failed, please try again", err))
		return
	}

	now := nowFrom(h.NowFunc)
	summary := owner.Summary()
	video := models.Video{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   videoAsset,
		Thumbnail:   thumbnailAsset,
		Duration:    duration,
		IsPublished: true,
		OwnerID:     owner.ID,
		Owner:       &summary,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.Media.Discard(ctx, videoAsset, thumbnailAsset)
		respond.Error(ctx, w, apierror.Internal("video upload failed, please try again", err))
		return
	}

	logging.FromContext(ctx).Info("video published", "video_id", video.ID, "duration", duration)
	respond.Success(ctx, w, http.StatusCreated, video, "video uploaded successfully")
}

// Get handles GET /api/v1/videos/{videoId}. Each fetch counts as a view and
// moves the video to the front of the viewer's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := h.visibleVideo(r, viewer)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Videos.RecordView(ctx, video.ID, viewer.ID, nowFrom(h.NowFunc)); err != nil {
		logging.FromContext(ctx).Warn("record video view", "video_id", video.ID, "error", err)
	} else {
		video.Views++
	}

	respond.Success(ctx, w, http.StatusOK, video, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title, description and a new
// thumbnail are each optional but at least one must be given. Ownership is
// checked before anything is uploaded.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := h.ownedVideo(r, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var (
		req       updateVideoRequest
		thumbnail media.Upload
		hasThumb  bool
	)
	if isMultipart(r) {
		cleanup, err := parseMultipart(w, r, h.MaxUploadBytes)
		defer cleanup()
		if err != nil {
			respond.Error(ctx, w, err)
			return
		}
		req = updateVideoRequest{Title: r.FormValue("title"), Description: r.FormValue("description")}
		if thumbnail, hasThumb, err = formFile(r, "thumbnail"); err != nil {
			respond.Error(ctx, w, err)
			return
		}
		defer closeUploads(thumbnail)
	} else if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	validation.TrimStrings(&req)

	if req.Title == "" && req.Description == "" && !hasThumb {
		respond.Error(ctx, w, apierror.MissingField("title, description or thumbnail"))
		return
	}

	updated := video
	if req.Title != "" {
		updated.Title = req.Title
	}
	if req.Description != "" {
		updated.Description = req.Description
	}
	if hasThumb {
		asset, err := h.Media.Store(ctx, media.FolderThumbnails, thumbnail)
		if err != nil {
			respond.Error(ctx, w, apierror.Internal("failed to upload new thumbnail file", err))
			return
		}
		updated.Thumbnail = asset
	}
	updated.UpdatedAt = nowFrom(h.NowFunc)

	if err := h.Videos.Update(ctx, updated); err != nil {
		if hasThumb {
			h.Media.Discard(ctx, updated.Thumbnail)
		}
		respond.Error(ctx, w, err)
		return
	}
	if hasThumb {
		h.Media.Discard(ctx, video.Thumbnail)
	}

	respond.Success(ctx, w, http.StatusOK, updated, "video details updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}. The media files are removed
// in the background after the row is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := h.ownedVideo(r, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	h.Media.Discard(ctx, video.VideoFile, video.Thumbnail)

	respond.Success(ctx, w, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := h.ownedVideo(r, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	published, err := h.Videos.TogglePublished(ctx, video.ID, nowFrom(h.NowFunc))
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "video publish status toggled successfully")
}

// visibleVideo loads the video named by the videoId parameter. Unpublished
// videos are only visible to their owner.
func (h VideoHandler) visibleVideo(r *http.Request, viewer models.User) (models.Video, error) {
	return loadVisibleVideo(r, h.Videos, viewer)
}

// ownedVideo loads the video named by the videoId parameter and checks that
// user owns it.
func (h VideoHandler) ownedVideo(r *http.Request, user models.User) (models.Video, error) {
	id, err := idParam(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}
	video, err := findVideo(r, h.Videos, id)
	if err != nil {
		return models.Video{}, err
	}
	if err := auth.RequireOwner(video.OwnerID, user.ID, "video"); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func loadVisibleVideo(r *http.Request, videos VideoStore, viewer models.User) (models.Video, error) {
	id, err := idParam(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}
	video, err := findVideo(r, videos, id)
	if err != nil {
		return models.Video{}, err
	}
	if !video.IsPublished && !auth.IsOwner(video.OwnerID, viewer.ID) {
		return models.Video{}, apierror.NotFound("video")
	}
	return video, nil
}

func findVideo(r *http.Request, videos VideoStore, id string) (models.Video, error) {
	video, err := videos.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Video{}, apierror.NotFound("video")
	}
	return video, err
}
