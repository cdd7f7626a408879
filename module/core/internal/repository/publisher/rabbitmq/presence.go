package rabbitmq

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/publisher"
)

var _ publisher.PresencePublisher = (*PresencePublisher)(nil)

const (
	ExchangeName = "attendance.events"
	QueueName    = "presence_events"

	EventTrackingDegraded = "tracking_degraded"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type PresencePublisher struct {
	ch amqpChannel
}

func NewPresencePublisher(conn *amqp.Connection) (*PresencePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := Declare(ch); err != nil {
		return nil, err
	}

	return &PresencePublisher{ch: ch}, nil
}

// Declare sets up the fanout exchange and the durable presence queue.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

type Message struct {
	UserID     string           `json:"user_id"`
	Event      string           `json:"event"`
	GeofenceID string           `json:"geofence_id,omitempty"`
	Location   *MessageLocation `json:"location,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Timestamp  int64            `json:"timestamp"`
}

type MessageLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *PresencePublisher) PublishPresence(ctx context.Context, alert *domain.PresenceAlert) error {
	return p.publish(ctx, Message{
		UserID:     alert.UserID,
		Event:      string(alert.Event.Kind),
		GeofenceID: alert.Event.GeofenceID,
		Location: &MessageLocation{
			Latitude:  alert.Event.Position.Lat,
			Longitude: alert.Event.Position.Lon,
		},
		Timestamp: alert.Event.At.UnixMilli(),
	})
}

func (p *PresencePublisher) PublishDegraded(ctx context.Context, alert *domain.DegradedAlert) error {
	return p.publish(ctx, Message{
		UserID:    alert.UserID,
		Event:     EventTrackingDegraded,
		Reason:    alert.Reason,
		Timestamp: alert.At.UnixMilli(),
	})
}

func (p *PresencePublisher) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", msg.Event, err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
