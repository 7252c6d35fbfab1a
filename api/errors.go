package api

import (
	"net/http"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/gin-gonic/gin"
)

func statusOf(err error) int {
	switch errors.CategoryOf(err) {
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": message}. Storage failures keep their detail in
// the log and send a generic message.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	_ = c.Error(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal storage error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respond writes v as JSON, or the error when err is set.
func respond[T any](c *gin.Context, v T, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
