package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/controllers"
)

// Controllers bundles everything RegisterRoutes wires up.
type Controllers struct {
	Users         *controllers.UserController
	Posts         *controllers.PostController
	Messages      *controllers.MessageController
	Notifications *controllers.NotificationController
	WS            *controllers.WSController
}

// RegisterRoutes builds the engine and mounts every route.
func RegisterRoutes(ctrl Controllers, auth gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ws", ctrl.WS.Connect)

	api := r.Group("/api")

	api.POST("/auth/register", ctrl.Users.Register)
	api.POST("/auth/login", ctrl.Users.Login)
	api.GET("/users/:id", ctrl.Users.GetUser)
	api.GET("/posts", ctrl.Posts.GetFeed)
	api.GET("/posts/type/:type", ctrl.Posts.GetFeedByType)
	api.GET("/posts/:id", ctrl.Posts.GetPost)

	protected := api.Group("")
	protected.Use(auth)
	{
		protected.POST("/auth/change-password", ctrl.Users.ChangePassword)
		protected.GET("/users/posts", ctrl.Users.GetOwnPosts)
		protected.POST("/users/:id/follow", ctrl.Users.Follow)
		protected.DELETE("/users/:id/follow", ctrl.Users.Unfollow)
		protected.POST("/posts", ctrl.Posts.CreatePost)
		protected.GET("/notifications", ctrl.Notifications.GetNotifications)
		protected.PUT("/notifications/read-all", ctrl.Notifications.MarkAllNotificationsRead)
		protected.PUT("/notifications/:id/read", ctrl.Notifications.MarkNotificationRead)
		protected.GET("/conversations", ctrl.Messages.GetConversations)
		protected.GET("/conversations/:id/messages", ctrl.Messages.GetMessages)
		protected.POST("/messages", ctrl.Messages.SendMessage)
		protected.PUT("/messages/:id/read", ctrl.Messages.MarkMessageRead)
		protected.POST("/messages/send-post", ctrl.Messages.SendPost)
	}

	return r
}
