package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failErr maps service errors onto status codes. Anything unrecognised is
// reported as fallback with a 500.
func failErr(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNoActiveCheckIn),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrMismatchedLength):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, geofence.ErrOutOfOrderSample):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, fallback)
	}
}
