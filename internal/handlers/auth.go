package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
	"github.com/vidtube/backend/internal/validation"
)

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// AuthHandler implements registration and credential endpoints.
type AuthHandler struct {
	Users          UserStore
	Sessions       SessionManager
	Media          MediaStore
	CookieSecure   bool
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type registerRequest struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Username string `form:"username" validate:"required"`
	Password string `form:"password" trim:"-" validate:"required,notblank"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" trim:"-" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" trim:"-" validate:"required"`
	NewPassword string `json:"newPassword" trim:"-" validate:"required,notblank"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register. The avatar upload is required,
// the cover image optional.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	cleanup, err := parseMultipart(w, r, h.MaxUploadBytes)
	defer cleanup()
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	req := registerRequest{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	req.Email = strings.ToLower(req.Email)
	req.Username = strings.ToLower(req.Username)

	if _, err := h.Users.FindByLogin(ctx, req.Username, req.Email); err == nil {
		respond.Error(ctx, w, apierror.New(apierror.KindConflict, "user with email or username already exists"))
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		respond.Error(ctx, w, apierror.Internal("unable to verify existing accounts", err))
		return
	}

	avatarFile, err := requireFile(r, "avatar")
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	coverFile, hasCover, err := formFile(r, "coverImage")
	defer closeUploads(avatarFile, coverFile)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	avatar, err := h.Media.Store(ctx, media.FolderAvatars, avatarFile)
	if err != nil {
		respond.Error(ctx, w, apierror.Internal("error while uploading avatar", err))
		return
	}
	var cover models.Asset
	if hasCover {
		if cover, err = h.Media.Store(ctx, media.FolderCovers, coverFile); err != nil {
			h.Media.Discard(ctx, avatar)
			respond.Error(ctx, w, apierror.Internal("error while uploading cover image", err))
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Media.Discard(ctx, avatar, cover)
		respond.Error(ctx, w, apierror.Internal("failed to secure password", err))
		return
	}

	now := nowFrom(h.NowFunc)
	user := models.User{
		ID:            uuid.NewString(),
		Username:      req.Username,
		Email:         req.Email,
		FullName:      req.FullName,
		Avatar:        avatar.URL,
		AvatarKey:     avatar.PublicID,
		CoverImage:    cover.URL,
		CoverImageKey: cover.PublicID,
		Password:      string(hashed),
		WatchHistory:  []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.Media.Discard(ctx, avatar, cover)
		if errors.Is(err, repositories.ErrConflict) {
			respond.Error(ctx, w, apierror.New(apierror.KindConflict, "user with email or username already exists"))
			return
		}
		respond.Error(ctx, w, apierror.Internal("something went wrong while registering the user", err))
		return
	}

	logger.Info("account registered", "user_id", user.ID)
	respond.Success(ctx, w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	validation.TrimStrings(&req)
	if req.Username == "" && req.Email == "" {
		respond.Error(ctx, w, apierror.MissingField("username or email"))
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	user, err := h.Users.FindByLogin(ctx, strings.ToLower(req.Username), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respond.Error(ctx, w, apierror.NotFound("user"))
			return
		}
		respond.Error(ctx, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "invalid user credentials", err))
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		respond.Error(ctx, w, apierror.Internal("something went wrong while generating tokens", err))
		return
	}

	h.setSessionCookies(w, tokens)
	respond.Success(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	if err := h.Sessions.Revoke(ctx, user.ID); err != nil {
		respond.Error(ctx, w, apierror.Internal("failed to sign out", err))
		return
	}

	h.clearSessionCookies(w)
	respond.Success(ctx, w, http.StatusOK, struct{}{}, "user logged out")
}

// RefreshToken handles POST /api/v1/users/refresh-token. The token is read from
// the refresh cookie or the request body and must match the one stored for
// the account.
func (h AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			respond.Error(ctx, w, err)
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		respond.Error(ctx, w, apierror.Unauthenticated("unauthorized request"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token, h.Users.FindByID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshTokenMismatch), errors.Is(err, auth.ErrSessionNotFound):
			respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "refresh token is expired or used", err))
		case errors.Is(err, auth.ErrTokenExpired):
			respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "refresh token expired", err))
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, repositories.ErrNotFound):
			respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "invalid refresh token", err))
		default:
			respond.Error(ctx, w, apierror.Internal("unable to refresh session", err))
		}
		return
	}

	h.setSessionCookies(w, tokens)
	respond.Success(ctx, w, http.StatusOK, map[string]string{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := principal(r)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	account, err := h.Users.FindByID(ctx, user.ID)
	if err != nil {
		respond.Error(ctx, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.OldPassword)); err != nil {
		respond.Error(ctx, w, apierror.Wrap(apierror.KindInvalidArgument, "invalid old password", err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(ctx, w, apierror.Internal("failed to secure password", err))
		return
	}
	if err := h.Users.UpdatePassword(ctx, user.ID, string(hashed), nowFrom(h.NowFunc)); err != nil {
		respond.Error(ctx, w, err)
		return
	}

	respond.Success(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
}

func (h AuthHandler) setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (h AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		cookie := h.cookie(name, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func (h AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
