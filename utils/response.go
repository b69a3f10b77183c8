package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dojosgithub/the-minaret/apperrors"
)

// RespondSuccess writes the standard success envelope.
func RespondSuccess(c *gin.Context, data interface{}, meta interface{}) {
	body := gin.H{"data": data}
	if meta != nil {
		body["meta"] = meta
	}
	c.JSON(http.StatusOK, body)
}

// RespondCreated is RespondSuccess with a 201.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// RespondError maps the error taxonomy to a status code and the stable
// {"message": ...} error shape. Raw error details are only included outside
// release mode.
func RespondError(c *gin.Context, err error) {
	body := gin.H{"message": apperrors.PublicMessage(err)}
	if gin.Mode() != gin.ReleaseMode {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), body)
}
