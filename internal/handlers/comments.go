package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pagination"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
	"github.com/vidtube/backend/internal/validation"
)

// CommentHandler serves comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

// List handles GET /api/v1/comments/{videoId}, newest first.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := loadVisibleVideo(r, h.Videos, viewer)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	page := pagination.FromQuery(r.URL.Query())
	total, err := h.Comments.CountByVideo(ctx, video.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	meta, ok := page.Compute(total)
	if !ok {
		respond.PageNotFound(ctx, w, page.Page)
		return
	}

	comments, err := h.Comments.ListByVideo(ctx, video.ID, page.Limit, page.Offset())
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, pagination.Payload(comments, meta), "comments fetched successfully")
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	video, err := loadVisibleVideo(r, h.Videos, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	summary := user.Summary()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   req.Comment,
		VideoID:   video.ID,
		OwnerID:   user.ID,
		Owner:     &summary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		respond.Error(ctx, w, apierror.Internal("failed to add comment", err))
		return
	}

	respond.Success(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "commentId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	comment, err := h.ownedComment(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	now := nowFrom(h.NowFunc)
	if err := h.Comments.UpdateContent(ctx, comment.ID, req.Comment, now); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	comment.Content = req.Comment
	comment.UpdatedAt = now

	respond.Success(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	id, err := idParam(r, "commentId")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	comment, err := h.ownedComment(r, id, user)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, struct{}{}, "comment deleted successfully")
}

func (h CommentHandler) ownedComment(r *http.Request, id string, user models.User) (models.Comment, error) {
	comment, err := h.Comments.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, apierror.NotFound("comment")
		}
		return models.Comment{}, err
	}
	if err := auth.RequireOwner(comment.OwnerID, user.ID, "comment"); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
