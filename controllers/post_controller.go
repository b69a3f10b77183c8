package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
	"github.com/dojosgithub/the-minaret/models"
	"github.com/dojosgithub/the-minaret/services"
	"github.com/dojosgithub/the-minaret/utils"
)

type PostController struct {
	social *services.SocialService
}

func NewPostController(social *services.SocialService) *PostController {
	return &PostController{social: social}
}

// CreatePost handles POST /api/posts.
func (pc *PostController) CreatePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input struct {
		Type  string            `json:"type" binding:"required"`
		Title string            `json:"title" binding:"required"`
		Body  string            `json:"body" binding:"required"`
		Media []models.MediaRef `json:"media"`
		Links []models.LinkRef  `json:"links"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.InvalidArgument(err.Error()))
		return
	}

	post, err := pc.social.CreatePost(c.Request.Context(), services.CreatePostInput{
		AuthorID: user.ID,
		Type:     input.Type,
		Title:    input.Title,
		Body:     input.Body,
		Media:    input.Media,
		Links:    input.Links,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, post)
}

// GetFeed handles GET /api/posts.
func (pc *PostController) GetFeed(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	posts, err := pc.social.ListPosts(c.Request.Context(), "", offset, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, posts, nil)
}

// GetFeedByType handles GET /api/posts/type/:type.
func (pc *PostController) GetFeedByType(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	posts, err := pc.social.ListPosts(c.Request.Context(), c.Param("type"), offset, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, posts, nil)
}

// GetPost handles GET /api/posts/:id.
func (pc *PostController) GetPost(c *gin.Context) {
	post, err := pc.social.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondSuccess(c, post, nil)
}
