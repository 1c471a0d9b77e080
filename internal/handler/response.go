package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tokenvault/internal/middleware"
	"tokenvault/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError writes the failure envelope for err.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}
	body := gin.H{"success": false, "error": se.Message}
	if se.Details != "" {
		body["details"] = se.Details
	}
	if len(se.Fields) > 0 {
		body["meta"] = se.Fields
	}
	c.JSON(statusFor(se.Kind), body)
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func principal(c *gin.Context) service.Principal {
	return service.Principal{UserID: middleware.GetUserID(c), Email: middleware.GetEmail(c)}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
