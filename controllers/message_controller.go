package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

type MessageController struct {
	messaging *services.MessagingService
}

func NewMessageController(messaging *services.MessagingService) *MessageController {
	return &MessageController{messaging: messaging}
}

// GetConversations handles GET /api/conversations.
func (mc *MessageController) GetConversations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := mc.messaging.ListConversations(c.Request.Context(), user.ID, offset, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, views, nil)
}

// GetMessages handles GET /api/conversations/:id/messages.
func (mc *MessageController) GetMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	msgs, err := mc.messaging.ListMessages(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, msgs, nil)
}

// SendMessage handles POST /api/messages.
func (mc *MessageController) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Recipient string            `json:"recipient" binding:"required"`
		Content   string            `json:"content" binding:"required"`
		Media     []models.MediaRef `json:"media"`
		PostID    string            `json:"post_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	msg, err := mc.messaging.Send(c.Request.Context(), services.SendInput{
		SenderID:     user.ID,
		RecipientRef: input.Recipient,
		Content:      input.Content,
		Media:        input.Media,
		PostID:       input.PostID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, msg)
}

// MarkMessageRead handles PUT /api/messages/:id/read.
func (mc *MessageController) MarkMessageRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	msg, err := mc.messaging.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, msg, nil)
}

// SendPost handles POST /api/messages/send-post.
func (mc *MessageController) SendPost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		RecipientID string `json:"recipient_id" binding:"required"`
		PostID      string `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	msg, err := mc.messaging.SendPost(c.Request.Context(), user.ID, input.RecipientID, input.PostID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, msg)
}
