package supabase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

const testKey = "anon-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", testKey, srv.Client())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		assert.Equal(t, "/rest/v1/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.Ping(context.Background()))
}

func TestClient_PingServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	var apiErr *APIError
	err := c.Ping(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestClient_DecodesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key value"})
	})

	repo := NewAttendanceRepo(c)
	err := repo.Insert(context.Background(), &domain.AttendanceRecord{UserID: "u"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "23505", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "duplicate key value")
}

func TestAttendanceRepo_InsertPostsRow(t *testing.T) {
	checkin := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	created := checkin.Add(time.Second)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/attendance", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		body, _ := io.ReadAll(r.Body)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(body, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "alice@example.com", rows[0]["user_id"])
		assert.Equal(t, "default", rows[0]["location"])
		assert.NotContains(t, rows[0], "created_at")

		writeJSON(t, w, http.StatusCreated, []map[string]any{{
			"id": rows[0]["id"], "user_id": "alice@example.com", "location": "default",
			"checkin_time": checkin, "checkout_time": nil, "is_test": false, "created_at": created,
		}})
	})

	rec := &domain.AttendanceRecord{UserID: "alice@example.com", Location: "default", CheckinTime: checkin}
	require.NoError(t, NewAttendanceRepo(c).Insert(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.CreatedAt.Equal(created))
}

func TestAttendanceRepo_GetOpenQuery(t *testing.T) {
	checkin := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.alice@example.com", q.Get("user_id"))
		assert.Equal(t, "is.null", q.Get("checkout_time"))
		assert.Equal(t, "checkin_time.desc", q.Get("order"))
		assert.Equal(t, "1", q.Get("limit"))

		writeJSON(t, w, http.StatusOK, []map[string]any{{
			"id": "a1", "user_id": "alice@example.com", "location": "default",
			"checkin_time": checkin, "checkout_time": nil, "is_test": false, "created_at": checkin,
		}})
	})

	rec, err := NewAttendanceRepo(c).GetOpen(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID)
	assert.True(t, rec.Open())
}

func TestAttendanceRepo_EmptyResultIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "not.is.null", r.URL.Query().Get("checkout_time"))
		writeJSON(t, w, http.StatusOK, []any{})
	})

	_, err := NewAttendanceRepo(c).GetLatestCheckout(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttendanceRepo_CloseCheckoutPatches(t *testing.T) {
	checkin := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	checkout := checkin.Add(8 * time.Hour)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.a1", r.URL.Query().Get("id"))

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, true, patch["is_test"])

		writeJSON(t, w, http.StatusOK, []map[string]any{{
			"id": "a1", "user_id": "TEST_USER_123", "location": "default",
			"checkin_time": checkin, "checkout_time": checkout, "is_test": true, "created_at": checkin,
		}})
	})

	rec, err := NewAttendanceRepo(c).CloseCheckout(context.Background(), "a1", checkout, true)
	require.NoError(t, err)
	require.NotNil(t, rec.CheckoutTime)
	assert.True(t, rec.CheckoutTime.Equal(checkout))
}

func TestTrackingRepo_GetHistoryRange(t *testing.T) {
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/location_tracking", r.URL.Path)
		assert.Equal(t, []string{"gte.2024-05-06T00:00:00Z", "lt.2024-05-07T00:00:00Z"}, q["timestamp"])
		assert.Equal(t, "timestamp.asc", q.Get("order"))

		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": "t1", "user_id": "u", "lat": 1.5, "lng": 2.5, "timestamp": start.Add(9 * time.Hour), "event_type": "check-in", "created_at": start},
			{"id": "t2", "user_id": "u", "lat": 1.5, "lng": 2.5, "timestamp": start.Add(10 * time.Hour), "event_type": "check-out", "created_at": start},
		})
	})

	rows, err := NewTrackingRepo(c).GetHistory(context.Background(), &domain.HistoryQuery{UserID: "u", Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.CheckIn, rows[0].EventType)
	assert.Equal(t, 1.5, rows[0].Lat)
}

func TestTrackingRepo_Insert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "check-out", rows[0]["event_type"])
		writeJSON(t, w, http.StatusCreated, rows)
	})

	row := &domain.TrackingRow{UserID: "u", Lat: 1, Lng: 2, Timestamp: time.Now().UTC(), EventType: domain.CheckOut}
	require.NoError(t, NewTrackingRepo(c).Insert(context.Background(), row))
	assert.NotEmpty(t, row.ID)
}

func TestTransactionRepo_ListFiltersTestOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, transactionSelect, q.Get("select"))
		assert.Equal(t, "eq.true", q.Get("is_test"))
		assert.Equal(t, "transaction_date.desc", q.Get("order"))

		writeJSON(t, w, http.StatusOK, []map[string]any{{
			"id": "tx1", "attendance_id": "a1", "user_id": "TEST_USER_123",
			"items": []string{"widget"}, "quantities": []int{2}, "prices": []float64{9.5},
			"shipping_details": map[string]string{"city": "Chennai"},
			"total_amount": 19, "is_test": true,
			"transaction_date": "2024-05-06T10:00:00+00:00", "created_at": "2024-05-06T10:00:00+00:00",
			"attendance": map[string]any{"location": "default", "checkin_time": "2024-05-06T09:00:00+00:00", "checkout_time": nil},
		}})
	})

	txs, err := NewTransactionRepo(c).List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, []string{"widget"}, txs[0].Items)
	assert.Equal(t, "Chennai", txs[0].ShippingDetails.City)
	require.NotNil(t, txs[0].Attendance)
	assert.Nil(t, txs[0].Attendance.CheckoutTime)
}

func TestTransactionRepo_ListIncludeRegular(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("is_test"))
		writeJSON(t, w, http.StatusOK, []any{})
	})

	txs, err := NewTransactionRepo(c).List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
