package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"

	"github.com/nandanugg/geofence-attendance/config"
	"github.com/nandanugg/geofence-attendance/module/core/domain"
)

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

const (
	metersPerDegreeLat = 111320.0
	stepsPerLap        = 20
	failureChance      = 0.05
)

// walk returns a point on a straight line through the fence center that
// swings out to twice the radius and back, so a device alternates between
// inside and outside every half lap.
func walk(fence domain.Geofence, step int, bearing float64) domain.GeoPoint {
	phase := float64(step%stepsPerLap) / stepsPerLap
	dist := 2 * fence.RadiusMeters * math.Abs(math.Sin(math.Pi*phase))

	dLat := dist * math.Cos(bearing) / metersPerDegreeLat
	dLon := dist * math.Sin(bearing) / (metersPerDegreeLat * math.Cos(fence.Center.Lat*math.Pi/180))
	return domain.GeoPoint{Lat: fence.Center.Lat + dLat, Lon: fence.Center.Lon + dLon}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [user_id]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	userID := "TEST_USER_123"
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	fence := cfg.Geofences[0]

	cfg.MQTTClientID = "attendance-mock-device-" + userID
	var client mqtt.Client
	client, err = config.NewMQTT(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("mqtt")
	}
	defer client.Disconnect(250)

	locationTopic := fmt.Sprintf("attendance/user/%s/location", userID)
	failureTopic := fmt.Sprintf("attendance/user/%s/failure", userID)
	bearing := rand.Float64() * 2 * math.Pi

	logger.Info().
		Str("broker", cfg.MQTTBroker).
		Str("user_id", userID).
		Str("geofence", fence.ID).
		Int("interval_s", intervalSec).
		Msg("publishing simulated walk")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	step := 0
	for now := range ticker.C {
		topic := locationTopic
		var payload []byte
		if rand.Float64() < failureChance {
			topic = failureTopic
			payload, _ = json.Marshal(failureMessage{Reason: "position unavailable", Timestamp: now.UnixMilli()})
		} else {
			p := walk(fence, step, bearing)
			payload, _ = json.Marshal(locationMessage{
				Latitude:  p.Lat,
				Longitude: p.Lon,
				Accuracy:  5 + rand.Float64()*10,
				Timestamp: now.UnixMilli(),
			})
			step++
		}

		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Error().Err(err).Str("topic", topic).Msg("publish")
			continue
		}
		logger.Debug().Str("topic", topic).RawJSON("payload", payload).Msg("published")
	}
}
