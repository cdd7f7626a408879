package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/service"
)

const defaultTestUser = "TEST_USER_123"

type attendanceService interface {
	CheckIn(ctx context.Context, userID, location string, checkinTime time.Time, isTest bool) (*domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, userID string, checkoutTime time.Time, isTest bool) (*domain.AttendanceRecord, error)
	LatestCheckin(ctx context.Context, userID string) (*time.Time, error)
	LatestCheckout(ctx context.Context, userID string) (*time.Time, error)
	Status(ctx context.Context, userID string) (*domain.AttendanceStatus, error)
	Track(ctx context.Context, row *domain.TrackingRow) error
	History(ctx context.Context, userID, date string) (*domain.HistorySummary, error)
}

type checkoutService interface {
	TestCheckout(ctx context.Context, req service.TestCheckoutRequest) (*service.TestCheckoutResult, error)
	Transactions(ctx context.Context, includeRegular bool) (*service.TransactionList, error)
}

type checkinRequest struct {
	Email       string    `json:"email" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	CheckinTime time.Time `json:"checkin_time" binding:"required"`
	IsTest      bool      `json:"is_test"`
}

type checkoutRequest struct {
	Email        string    `json:"email" binding:"required"`
	CheckoutTime time.Time `json:"checkout_time" binding:"required"`
	IsTest       bool      `json:"is_test"`
}

type trackRequest struct {
	Email     string                   `json:"email" binding:"required"`
	Lat       *float64                 `json:"lat" binding:"required"`
	Lng       *float64                 `json:"lng" binding:"required"`
	Timestamp time.Time                `json:"timestamp" binding:"required"`
	EventType domain.PresenceEventKind `json:"event_type" binding:"required"`
}

type testCheckoutRequest struct {
	UserID       string                 `json:"userId"`
	CheckoutTime *time.Time             `json:"checkout_time"`
	Items        []string               `json:"items"`
	Quantities   []int                  `json:"quantities"`
	Prices       []float64              `json:"prices"`
	Shipping     domain.ShippingDetails `json:"shipping"`
	IsTest       *bool                  `json:"isTest"`
}

type AttendanceHandler struct {
	attendanceSvc attendanceService
	checkoutSvc   checkoutService
	now           func() time.Time
}

func NewAttendanceHandler(attendanceSvc attendanceService, checkoutSvc checkoutService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, checkoutSvc: checkoutSvc, now: time.Now}
}

func (h *AttendanceHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/attendance")
	g.POST("/checkin", h.CheckIn)
	g.POST("/checkout", h.CheckOut)
	g.GET("/get-checkin", h.GetCheckin)
	g.GET("/get-checkout", h.GetCheckout)
	g.GET("/status", h.Status)
	g.POST("/track", h.Track)
	g.GET("/history", h.History)
	g.POST("/test-checkout", h.TestCheckout)
	g.GET("/get-test-transactions", h.TestTransactions)
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	rec, err := h.attendanceSvc.CheckIn(c.Request.Context(), req.Email, req.Location, req.CheckinTime, req.IsTest)
	if err != nil {
		failErr(c, err, "Failed to check in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": []*domain.AttendanceRecord{rec}})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	rec, err := h.attendanceSvc.CheckOut(c.Request.Context(), req.Email, req.CheckoutTime, req.IsTest)
	if err != nil {
		failErr(c, err, "Failed to check out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": []*domain.AttendanceRecord{rec}})
}

func (h *AttendanceHandler) GetCheckin(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	t, err := h.attendanceSvc.LatestCheckin(c.Request.Context(), email)
	if err != nil {
		failErr(c, err, "Failed to fetch check-in time")
		return
	}

	c.JSON(http.StatusOK, gin.H{"latestCheckin": t})
}

func (h *AttendanceHandler) GetCheckout(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	t, err := h.attendanceSvc.LatestCheckout(c.Request.Context(), email)
	if err != nil {
		failErr(c, err, "Failed to fetch check-out time")
		return
	}

	c.JSON(http.StatusOK, gin.H{"latestCheckout": t})
}

func (h *AttendanceHandler) Status(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	status, err := h.attendanceSvc.Status(c.Request.Context(), email)
	if err != nil {
		failErr(c, err, "Failed to fetch attendance status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"isCheckedIn":    status.IsCheckedIn,
		"latestCheckin":  status.LatestCheckin,
		"latestCheckout": status.LatestCheckout,
	})
}

func (h *AttendanceHandler) Track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	row := &domain.TrackingRow{
		UserID:    req.Email,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Timestamp: req.Timestamp,
		EventType: req.EventType,
	}
	if err := h.attendanceSvc.Track(c.Request.Context(), row); err != nil {
		failErr(c, err, "Failed to track location")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": []*domain.TrackingRow{row}})
}

func (h *AttendanceHandler) History(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	summary, err := h.attendanceSvc.History(c.Request.Context(), email, c.Query("date"))
	if err != nil {
		failErr(c, err, "Failed to fetch location history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"data":            summary.Rows,
		"totalTimeInside": summary.Formatted,
		"totalMinutes":    summary.TotalMinutes,
	})
}

func (h *AttendanceHandler) TestCheckout(c *gin.Context) {
	var req testCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := service.TestCheckoutRequest{
		UserID:       req.UserID,
		CheckoutTime: h.now(),
		Items:        req.Items,
		Quantities:   req.Quantities,
		Prices:       req.Prices,
		Shipping:     req.Shipping,
		IsTest:       true,
	}
	if in.UserID == "" {
		in.UserID = defaultTestUser
	}
	if req.CheckoutTime != nil {
		in.CheckoutTime = *req.CheckoutTime
	}
	if req.IsTest != nil {
		in.IsTest = *req.IsTest
	}

	res, err := h.checkoutSvc.TestCheckout(c.Request.Context(), in)
	if err != nil {
		failErr(c, err, "Failed to process test checkout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Test checkout processed successfully",
		"attendance":  res.Attendance,
		"transaction": res.Transaction,
	})
}

func (h *AttendanceHandler) TestTransactions(c *gin.Context) {
	list, err := h.checkoutSvc.Transactions(c.Request.Context(), c.Query("includeRegular") == "true")
	if err != nil {
		failErr(c, err, "Failed to fetch test transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      list.Transactions,
		"count":     list.Count,
		"testCount": list.TestCount,
	})
}

func requireEmail(c *gin.Context) (string, bool) {
	email := c.Query("email")
	if email == "" {
		fail(c, http.StatusBadRequest, "Email is required")
		return "", false
	}
	return email, true
}
