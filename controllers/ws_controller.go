package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSController struct {
	manager *WSManager
	tokens  *services.TokenService
	logger  *zap.Logger
}

func NewWSController(manager *WSManager, tokens *services.TokenService, logger *zap.Logger) *WSController {
	return &WSController{manager: manager, tokens: tokens, logger: logger}
}

// Connect handles GET /ws. Browsers cannot set headers on websocket requests,
// so the token rides in the query string.
func (wc *WSController) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.RespondError(c, apperrors.Unauthorized("Missing token"))
		return
	}
	userID, err := wc.tokens.Verify(token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := wc.manager.AddConnection(userID, conn)

	// Reader loop: the server only pushes, but reading is what notices the
	// peer going away.
	go func() {
		defer wc.manager.RemoveConnection(userID, client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
