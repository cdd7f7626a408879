package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
)

var _ database.TrackingRepository = (*TrackingRepo)(nil)

type TrackingRepo struct {
	db *sql.DB
}

func NewTrackingRepo(db *sql.DB) *TrackingRepo {
	return &TrackingRepo{db: db}
}

func (r *TrackingRepo) Insert(ctx context.Context, row *domain.TrackingRow) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	res := r.db.QueryRowContext(ctx,
		`INSERT INTO location_tracking (id, user_id, lat, lng, timestamp, event_type) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		row.ID, row.UserID, row.Lat, row.Lng, row.Timestamp, string(row.EventType),
	)
	if err := res.Scan(&row.CreatedAt); err != nil {
		return fmt.Errorf("insert location_tracking: %w", err)
	}
	return nil
}

func (r *TrackingRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.TrackingRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, lat, lng, timestamp, event_type, created_at FROM location_tracking WHERE user_id = $1 AND timestamp >= $2 AND timestamp < $3 ORDER BY timestamp ASC`,
		query.UserID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.TrackingRow
	for rows.Next() {
		var (
			tr        domain.TrackingRow
			eventType string
		)
		if err := rows.Scan(&tr.ID, &tr.UserID, &tr.Lat, &tr.Lng, &tr.Timestamp, &eventType, &tr.CreatedAt); err != nil {
			return nil, err
		}
		tr.EventType = domain.PresenceEventKind(eventType)
		results = append(results, tr)
	}
	return results, rows.Err()
}
