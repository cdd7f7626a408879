package supabase

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.TrackingRepository = (*TrackingRepo)(nil)

const trackingTable = "location_tracking"

type trackingInsert struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"user_id"`
	Lat       float64                  `json:"lat"`
	Lng       float64                  `json:"lng"`
	Timestamp time.Time                `json:"timestamp"`
	EventType domain.PresenceEventKind `json:"event_type"`
}

type TrackingRepo struct {
	client *Client
}

func NewTrackingRepo(client *Client) *TrackingRepo {
	return &TrackingRepo{client: client}
}

func (r *TrackingRepo) Insert(ctx context.Context, row *domain.TrackingRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	var out []domain.TrackingRow
	err := r.client.insert(ctx, trackingTable, []trackingInsert{{
		ID:        row.ID,
		UserID:    row.UserID,
		Lat:       row.Lat,
		Lng:       row.Lng,
		Timestamp: row.Timestamp,
		EventType: row.EventType,
	}}, &out)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		row.CreatedAt = out[0].CreatedAt
	}
	return nil
}

func (r *TrackingRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackingRow, error) {
	q := url.Values{
		"select":    {"*"},
		"user_id":   {eq(query.UserID)},
		"timestamp": {"gte." + timestamp(query.Start), "lt." + timestamp(query.End)},
		"order":     {"timestamp.asc"},
	}
	var out []domain.TrackingRow
	if err := r.client.selectRows(ctx, trackingTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
