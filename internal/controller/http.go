package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/dto"
)

// statusFor maps the error taxonomy onto HTTP status codes. Anything without
// a code is an internal error.
func statusFor(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeUnauthorized:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeInvalidState:
		return http.StatusConflict
	case apperr.CodeDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(statusFor(err), dto.ErrorResponse{Message: err.Error()})
}
