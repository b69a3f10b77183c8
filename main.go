package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/config"
	"github.com/dojosgithub/the-minaret/controllers"
	"github.com/dojosgithub/the-minaret/middlewares"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/routes"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/store"
	"github.com/dojosgithub/the-minaret/store/memory"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		conversations services.ConversationRegistry
		messages      services.MessageRepository
		users         services.UserRepository
		posts         services.PostRepository
		notifications services.NotificationRepository
	)

	if cfg.DBDSN != "" {
		db, err := config.OpenDB(cfg)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		if err := models.Migrate(db); err != nil {
			logger.Fatal("migrating schema", zap.Error(err))
		}
		conversations = store.NewConversationStore(db)
		messages = store.NewMessageStore(db)
		users = store.NewUserStore(db)
		posts = store.NewPostStore(db)
		notifications = store.NewNotificationStore(db)
	} else {
		// No DSN: run on in-memory stores. Single-process development only.
		logger.Warn("MINARET_DB_DSN not set, using in-memory stores")
		conversations = memory.NewConversationStore()
		messages = memory.NewMessageStore()
		users = memory.NewUserStore()
		posts = memory.NewPostStore()
		notifications = memory.NewNotificationStore()
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	wsManager := controllers.NewWSManager(logger)

	messaging := services.NewMessagingService(conversations, messages, users, posts, notifications, wsManager, logger)
	social := services.NewSocialService(users, posts, notifications, tokens, logger)

	ctrl := routes.Controllers{
		Users:         controllers.NewUserController(social),
		Posts:         controllers.NewPostController(social),
		Messages:      controllers.NewMessageController(messaging),
		Notifications: controllers.NewNotificationController(social),
		WS:            controllers.NewWSController(wsManager, tokens, logger),
	}

	r := routes.RegisterRoutes(ctrl, middlewares.TokenAuthMiddleware(tokens, users))

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
