package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse writes data with a "message" key merged in.
func SuccessResponse(c *gin.Context, statusCode int, message string, data gin.H) {
	body := gin.H{}
	for k, v := range data {
		body[k] = v
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(statusCode, body)
}

// ErrorResponse writes {"error": message}, plus "details" when given.
func ErrorResponse(c *gin.Context, statusCode int, message string, details interface{}) {
	body := gin.H{"error": message}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(statusCode, body)
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message, nil)
}

func InternalServerError(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
}
