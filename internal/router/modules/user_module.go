package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamhive/streamhive/internal/container"
	handlers "github.com/streamhive/streamhive/internal/interface/http"
	"github.com/streamhive/streamhive/internal/interface/middleware"
	"github.com/streamhive/streamhive/pkg/helpers"
)

// UserModule wires the session endpoints.
// Public: POST /api/users/register, /api/users/login, /api/users/refresh
// Protected: POST /api/users/logout, /api/users/change-password,
// GET/PATCH /api/users/me, PATCH /api/users/me/{avatar,cover}
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  *helpers.TokenManager
}

func NewUserModule(h *handlers.UserHandler, tokens *helpers.TokenManager) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP())

	users := rg.Group("/users")
	users.POST("/register", registerLimiter, m.Handler.Register)
	users.POST("/login", loginLimiter, m.Handler.Login)
	users.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := users.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/change-password", m.Handler.ChangePassword)
		auth.GET("/me", m.Handler.Me)
		auth.PATCH("/me", m.Handler.UpdateAccount)
		auth.PATCH("/me/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/me/cover", m.Handler.UpdateCover)
	}
}
