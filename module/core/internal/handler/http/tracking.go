package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
)

type trackingService interface {
	FeedSample(ctx context.Context, userID string, sample domain.PositionSample) (*geofence.SampleResult, error)
	FeedFailure(ctx context.Context, userID, reason string, at time.Time) geofence.Snapshot
	Snapshot(userID string) (geofence.Snapshot, bool)
	Stop(userID string) bool
	Fences() []domain.Geofence
}

// sampleRequest timestamps are unix milliseconds; zero means now.
type sampleRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type failureRequest struct {
	Reason    string `json:"reason" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

type sampleResponse struct {
	Inside          bool                  `json:"inside"`
	NearestID       string                `json:"nearest_geofence_id,omitempty"`
	NearestDistance float64               `json:"nearest_distance_m"`
	Event           *domain.PresenceEvent `json:"event,omitempty"`
}

type TrackingHandler struct {
	trackingSvc trackingService
	now         func() time.Time
}

func NewTrackingHandler(trackingSvc trackingService) *TrackingHandler {
	return &TrackingHandler{trackingSvc: trackingSvc, now: time.Now}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.GET("/geofences", h.GetGeofences)
	r.POST("/tracking/:user_id/samples", h.PostSample)
	r.POST("/tracking/:user_id/failures", h.PostFailure)
	r.GET("/tracking/:user_id", h.GetSnapshot)
	r.DELETE("/tracking/:user_id", h.Stop)
}

func (h *TrackingHandler) GetGeofences(c *gin.Context) {
	c.JSON(http.StatusOK, h.trackingSvc.Fences())
}

func (h *TrackingHandler) PostSample(c *gin.Context) {
	userID := c.Param("user_id")

	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	sample := domain.PositionSample{
		Coords:         domain.GeoPoint{Lat: req.Latitude, Lon: req.Longitude},
		AccuracyMeters: req.Accuracy,
		Timestamp:      h.timestamp(req.Timestamp),
	}
	res, err := h.trackingSvc.FeedSample(c.Request.Context(), userID, sample)
	if err != nil {
		failErr(c, err, "Failed to process sample")
		return
	}

	resp := sampleResponse{Inside: res.Evaluation.IsInside(), Event: res.Event}
	if n := res.Evaluation.Nearest; n != nil {
		resp.NearestID = n.Fence.ID
		resp.NearestDistance = n.DistanceMeters
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TrackingHandler) PostFailure(c *gin.Context) {
	userID := c.Param("user_id")

	var req failureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	snap := h.trackingSvc.FeedFailure(c.Request.Context(), userID, req.Reason, h.timestamp(req.Timestamp))
	c.JSON(http.StatusOK, snap)
}

func (h *TrackingHandler) GetSnapshot(c *gin.Context) {
	snap, ok := h.trackingSvc.Snapshot(c.Param("user_id"))
	if !ok {
		fail(c, http.StatusNotFound, "no active tracking session")
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *TrackingHandler) Stop(c *gin.Context) {
	if !h.trackingSvc.Stop(c.Param("user_id")) {
		fail(c, http.StatusNotFound, "no active tracking session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) timestamp(ms int64) time.Time {
	if ms == 0 {
		return h.now()
	}
	return time.UnixMilli(ms)
}
