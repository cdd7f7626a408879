package publisher

import (
	"context"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

type PresencePublisher interface {
	PublishPresence(ctx context.Context, alert *domain.PresenceAlert) error
	PublishDegraded(ctx context.Context, alert *domain.DegradedAlert) error
}
