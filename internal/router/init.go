package router

import (
	"github.com/streamhive/streamhive/internal/application"
	"github.com/streamhive/streamhive/internal/container"
	pginfra "github.com/streamhive/streamhive/internal/infrastructure/postgres"
	handlers "github.com/streamhive/streamhive/internal/interface/http"
	"github.com/streamhive/streamhive/internal/router/modules"
	"github.com/streamhive/streamhive/pkg/helpers"
)

// InitModules wires all application modules from container singletons
// and registers them with the router registry. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	subs := pginfra.NewSubscriptionRepository(pool)
	videos := pginfra.NewVideoRepository(pool)

	sessions := application.NewSessionService(users, container.GetTokens(), helpers.NewBcryptHasher(), logger)
	sessions.Pub = container.GetRabbitPub()
	sessions.Redis = container.GetRedis()
	sessions.ES = container.GetES()
	sessions.ESChannelIndex = cfg.ESChannelsIndex
	sessions.MailEnabled = cfg.MailSendEnabled

	channels := application.NewChannelService(users, subs, logger)
	channels.Redis = container.GetRedis()
	channels.ES = container.GetES()
	channels.ESChannelIndex = cfg.ESChannelsIndex
	channels.CacheTTL = cfg.ProfileCacheTTL

	videoSvc := application.NewVideoService(videos, users, logger)

	media := helpers.NewGCSMediaStore(container.GetGCS(), cfg.GCSBucket)

	userHandler := handlers.NewUserHandler(sessions, media, logger, cfg.CookieDomain, cfg.CookieSecure)
	channelHandler := handlers.NewChannelHandler(channels, videoSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetTokens()))
	r.Add(modules.NewChannelModule(channelHandler, container.GetTokens()))
}
