package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

// UserLoader fetches the authenticated account for the request context.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TokenAuthMiddleware verifies the bearer token and stores the authenticated
// user in the gin context under "user".
func TokenAuthMiddleware(tokens *services.TokenService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.RespondError(c, apperrors.Unauthorized("Missing authorization header"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header || raw == "" {
			utils.RespondError(c, apperrors.Unauthorized("Invalid authorization header"))
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if user == nil {
			utils.RespondError(c, apperrors.Unauthorized("Unknown user"))
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
