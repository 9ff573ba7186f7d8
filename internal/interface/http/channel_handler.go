package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/streamhive/streamhive/internal/application"
	"github.com/streamhive/streamhive/internal/interface/middleware"
	"github.com/streamhive/streamhive/pkg/response"
)

// ChannelHandler serves the aggregation views: channel profiles, watch
// history, channel search and video listings.
type ChannelHandler struct {
	Channels *application.ChannelService
	Videos   *application.VideoService
	Logger   *logrus.Logger
}

func NewChannelHandler(channels *application.ChannelService, videos *application.VideoService, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Channels: channels, Videos: videos, Logger: logger}
}

// Profile handles GET /api/channels/:username. A logged-in viewer gets
// is_subscribed relative to themselves.
func (h *ChannelHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetString(middleware.CtxUserIDKey)
	profile, err := h.Channels.ChannelProfile(c.Request.Context(), username, viewerID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile, "channel profile", nil)
}

// Search handles GET /api/channels/search?q=...&size=...
func (h *ChannelHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Channels.Search(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "channels", gin.H{"count": len(hits)})
}

// History handles GET /api/users/history.
func (h *ChannelHandler) History(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	views, err := h.Channels.WatchHistory(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "watch history", gin.H{"count": len(views)})
}

// Watch handles POST /api/videos/:id/watch, appending to the caller's
// watch history.
func (h *ChannelHandler) Watch(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	video, err := h.Videos.Watch(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, video, "watch recorded", nil)
}

// ListVideos handles GET /api/channels/:username/videos.
func (h *ChannelHandler) ListVideos(c *gin.Context) {
	profile, err := h.Channels.ChannelProfile(c.Request.Context(), c.Param("username"), "")
	if err != nil {
		fail(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	videos, err := h.Videos.ListByOwner(c.Request.Context(), profile.ID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, videos, "channel videos", gin.H{"count": len(videos)})
}
