package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamhive/streamhive/internal/container"
	handlers "github.com/streamhive/streamhive/internal/interface/http"
	"github.com/streamhive/streamhive/internal/interface/middleware"
	"github.com/streamhive/streamhive/pkg/helpers"
)

// ChannelModule wires the aggregation endpoints.
// Public (viewer context optional): GET /api/channels/:username,
// GET /api/channels/:username/videos, GET /api/channels/search
// Protected: GET /api/users/history, POST /api/videos/:id/watch
type ChannelModule struct {
	Handler *handlers.ChannelHandler
	Tokens  *helpers.TokenManager
}

func NewChannelModule(h *handlers.ChannelHandler, tokens *helpers.TokenManager) *ChannelModule {
	return &ChannelModule{Handler: h, Tokens: tokens}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP())

	channels := rg.Group("/channels")
	channels.Use(readLimiter)
	channels.GET("/search", m.Handler.Search)
	channels.GET("/:username", middleware.OptionalAuth(m.Tokens), m.Handler.Profile)
	channels.GET("/:username/videos", m.Handler.ListVideos)

	rg.GET("/users/history", middleware.Auth(m.Tokens), m.Handler.History)
	rg.POST("/videos/:id/watch", middleware.Auth(m.Tokens), m.Handler.Watch)
}
