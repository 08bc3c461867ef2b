package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Endpoint payload shapes are part of the public API, so no envelope is
// added around data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errBody{Code: code, Message: message})
}
