package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

type NotificationController struct {
	social *services.SocialService
}

func NewNotificationController(social *services.SocialService) *NotificationController {
	return &NotificationController{social: social}
}

// GetNotifications handles GET /api/notifications.
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	ns, err := nc.social.ListNotifications(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, ns, nil)
}

// MarkAllNotificationsRead handles PUT /api/notifications/read-all.
func (nc *NotificationController) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := nc.social.MarkAllNotificationsRead(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"updated": updated}, nil)
}

// MarkNotificationRead handles PUT /api/notifications/:id/read.
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := nc.social.MarkNotificationRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, n, nil)
}
