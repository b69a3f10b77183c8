package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dojosgithub/the-minaret/services"
)

func TestChangePassword_Endpoint(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "hunter22!",
	})
	req.Equal(http.StatusCreated, w.Code)

	var reg struct {
		Data services.AuthResult `json:"data"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &reg))
	token := reg.Data.Token

	// Wrong current password is rejected
	w = f.do(t, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"current_password": "wrong", "new_password": "newpassword1",
	})
	req.Equal(http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"current_password": "hunter22!", "new_password": "newpassword1",
	})
	req.Equal(http.StatusOK, w.Code)

	// Only the new password logs in now
	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "hunter22!",
	})
	req.Equal(http.StatusUnauthorized, w.Code)
	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "newpassword1",
	})
	req.Equal(http.StatusOK, w.Code)
}
