package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/utils"
)

// currentUser pulls the authenticated user placed in the context by the auth
// middleware. Writes the 401 itself when it is missing.
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		utils.RespondError(c, apperrors.Unauthorized("Not authenticated"))
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok {
		utils.RespondError(c, apperrors.Unauthorized("Not authenticated"))
		return nil, false
	}
	return user, true
}
