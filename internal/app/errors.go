package app

import (
	"errors"
	"log"
	"net/http"

	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var statusByKind = map[service.ErrorKind]int{
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindValidation:   http.StatusBadRequest,
	service.KindConflict:     http.StatusConflict,
}

// respondError writes the HTTP form of a service error. Internal errors are
// logged and never leak their cause.
func respondError(c *gin.Context, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) || appErr.Kind == service.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		util.InternalServerError(c)
		return
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	util.ErrorResponse(c, status, appErr.Message, nil)
}

// bindJSON binds the request body and answers 400 on failure. Validator
// errors are reported per field.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			fields := make(map[string]string, len(validationErr))
			for _, fieldErr := range validationErr {
				fields[fieldErr.Field()] = fieldErr.Tag()
			}
			util.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", fields)
			return false
		}
		util.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
