package subscriber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/module/core/domain"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
)

const (
	LocationTopic = "attendance/user/+/location"
	FailureTopic  = "attendance/user/+/failure"
)

type trackingService interface {
	FeedSample(ctx context.Context, userID string, sample domain.PositionSample) (*geofence.SampleResult, error)
	FeedFailure(ctx context.Context, userID, reason string, at time.Time) geofence.Snapshot
}

// Timestamps are unix milliseconds.
type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type failureMessage struct {
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

type LocationSubscriber struct {
	client      mqtt.Client
	trackingSvc trackingService
	logger      zerolog.Logger
}

func NewLocationSubscriber(client mqtt.Client, trackingSvc trackingService, logger zerolog.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client:      client,
		trackingSvc: trackingSvc,
		logger:      logger.With().Str("component", "mqtt_subscriber").Logger(),
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.SubscribeMultiple(map[string]byte{
		LocationTopic: 1,
		FailureTopic:  1,
	}, s.route)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) route(c mqtt.Client, msg mqtt.Message) {
	if strings.HasSuffix(msg.Topic(), "/failure") {
		s.handleFailure(c, msg)
		return
	}
	s.handleLocation(c, msg)
}

func (s *LocationSubscriber) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	userID, err := userIDFromTopic(msg.Topic())
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("invalid topic")
		return
	}

	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("invalid location message")
		return
	}
	if err := validateLocationMessage(&raw); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("validation error")
		return
	}

	sample := domain.PositionSample{
		Coords:         domain.GeoPoint{Lat: raw.Latitude, Lon: raw.Longitude},
		AccuracyMeters: raw.Accuracy,
		Timestamp:      time.UnixMilli(raw.Timestamp),
	}
	res, err := s.trackingSvc.FeedSample(context.Background(), userID, sample)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("sample not applied")
		return
	}
	if res.Event != nil {
		s.logger.Debug().Str("user_id", userID).Str("event", string(res.Event.Kind)).Msg("sample produced event")
	}
}

func (s *LocationSubscriber) handleFailure(_ mqtt.Client, msg mqtt.Message) {
	userID, err := userIDFromTopic(msg.Topic())
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("invalid topic")
		return
	}

	var raw failureMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("invalid failure message")
		return
	}
	if raw.Reason == "" {
		s.logger.Warn().Str("user_id", userID).Msg("validation error: reason required")
		return
	}

	at := time.Now()
	if raw.Timestamp > 0 {
		at = time.UnixMilli(raw.Timestamp)
	}
	s.trackingSvc.FeedFailure(context.Background(), userID, raw.Reason, at)
}

// userIDFromTopic extracts <id> from attendance/user/<id>/<kind>.
func userIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "attendance" || parts[1] != "user" || parts[2] == "" {
		return "", errors.New("topic: expected attendance/user/<id>/<kind>")
	}
	return parts[2], nil
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
