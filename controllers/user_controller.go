package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

type UserController struct {
	social *services.SocialService
}

func NewUserController(social *services.SocialService) *UserController {
	return &UserController{social: social}
}

// Register handles POST /api/auth/register.
func (uc *UserController) Register(c *gin.Context) {
	var input struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	result, err := uc.social.Register(c.Request.Context(), services.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, result)
}

// Login handles POST /api/auth/login.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	result, err := uc.social.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, result, nil)
}

// ChangePassword handles POST /api/auth/change-password.
func (uc *UserController) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	if err := uc.social.ChangePassword(c.Request.Context(), user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"changed": true}, nil)
}

// GetOwnPosts handles GET /api/users/posts.
func (uc *UserController) GetOwnPosts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	posts, err := uc.social.ListPostsByAuthor(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, posts, nil)
}

// GetUser handles GET /api/users/:id.
func (uc *UserController) GetUser(c *gin.Context) {
	profile, err := uc.social.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, profile, nil)
}

// Follow handles POST /api/users/:id/follow.
func (uc *UserController) Follow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := uc.social.Follow(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"following": true}, nil)
}

// Unfollow handles DELETE /api/users/:id/follow.
func (uc *UserController) Unfollow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := uc.social.Unfollow(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"following": false}, nil)
}
