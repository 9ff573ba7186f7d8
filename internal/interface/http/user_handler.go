package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/streamhive/streamhive/internal/application"
	"github.com/streamhive/streamhive/internal/interface/middleware"
	"github.com/streamhive/streamhive/pkg/apperr"
	"github.com/streamhive/streamhive/pkg/helpers"
	"github.com/streamhive/streamhive/pkg/response"
	"github.com/streamhive/streamhive/pkg/validation"
)

// UserHandler maps the session operations onto HTTP. Media uploads
// happen here; only resulting URLs cross into the application layer.
type UserHandler struct {
	Sessions *application.SessionService
	Media    helpers.MediaStore
	Logger   *logrus.Logger
	Cookies  *helpers.CookieManager
}

func NewUserHandler(sessions *application.SessionService, media helpers.MediaStore, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Sessions: sessions, Media: media, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// fail writes the envelope for an application error, mapping its kind
// onto a status code.
func fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		response.Error[any](c, apperr.HTTPStatus(err), ae.Message, map[string]any{"kind": ae.Kind})
		return
	}
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type updateAccountRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// Register handles POST /api/users/register (multipart). The avatar
// file is mandatory, the cover image optional; both are uploaded to
// the media store before the core is invoked.
func (h *UserHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	fullName := c.PostForm("full_name")
	password := c.PostForm("password")

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar is required", nil)
		return
	}
	avatarURL, err := h.uploadImage(c, avatarFile, "avatars")
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}

	var coverURL *string
	if coverFile, err := c.FormFile("cover_image"); err == nil {
		u, err := h.uploadImage(c, coverFile, "covers")
		if err != nil {
			// roll back the avatar object; cleanup is best-effort
			if delErr := h.Media.Delete(c.Request.Context(), avatarURL); delErr != nil {
				h.Logger.WithError(delErr).Warn("avatar cleanup failed")
			}
			h.Logger.WithError(err).Error("cover upload failed")
			response.Error[any](c, http.StatusInternalServerError, "cover upload failed", nil)
			return
		}
		coverURL = &u
	}

	user, err := h.Sessions.Register(c.Request.Context(), application.RegisterInput{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      password,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user, "user registered", nil)
}

// Login handles POST /api/users/login. On success the token pair is
// set as cookies and also returned in the body for non-browser clients.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	user, pair, err := h.Sessions.Login(c.Request.Context(), application.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh handles POST /api/users/refresh. The refresh token comes
// from the cookie or the request body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}
	pair, err := h.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout handles POST /api/users/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Sessions.Logout(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// ChangePassword handles POST /api/users/change-password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Sessions.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	user, err := h.Sessions.CurrentUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "current user", nil)
}

// UpdateAccount handles PATCH /api/users/me.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	user, err := h.Sessions.UpdateAccount(c.Request.Context(), uid, application.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "account updated", nil)
}

// UpdateAvatar handles PATCH /api/users/me/avatar (multipart).
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	url, err := h.uploadImage(c, fh, "avatars")
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	user, err := h.Sessions.UpdateAvatar(c.Request.Context(), uid, url)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "avatar updated", nil)
}

// UpdateCover handles PATCH /api/users/me/cover (multipart).
func (h *UserHandler) UpdateCover(c *gin.Context) {
	fh, err := c.FormFile("cover_image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cover image file is required", nil)
		return
	}
	url, err := h.uploadImage(c, fh, "covers")
	if err != nil {
		h.Logger.WithError(err).Error("cover upload failed")
		response.Error[any](c, http.StatusInternalServerError, "cover upload failed", nil)
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	user, err := h.Sessions.UpdateCover(c.Request.Context(), uid, url)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "cover updated", nil)
}

func (h *UserHandler) uploadImage(c *gin.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	objectPath := filepath.ToSlash(filepath.Join(prefix, uuid.NewString()+ext))
	return h.Media.Upload(c.Request.Context(), objectPath, contentType, f)
}
