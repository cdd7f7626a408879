package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nandanugg/geofence-attendance/config"
	"github.com/nandanugg/geofence-attendance/module/core"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	conn, err := config.NewRabbitMQ(cfg, "attendance-event-listener")
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := core.DeclarePresenceBus(ch); err != nil {
		logger.Fatal().Err(err).Msg("declare presence bus")
	}

	msgs, err := ch.Consume(core.PresenceQueue, "", true, false, false, false, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("consume")
	}

	logger.Info().Str("queue", core.PresenceQueue).Msg("waiting for presence events")

	go func() {
		for msg := range msgs {
			var ev core.PresenceMessage
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				logger.Warn().Err(err).Msg("invalid presence message")
				continue
			}
			at := time.UnixMilli(ev.Timestamp).Format(time.RFC3339)
			if ev.Reason != "" {
				fmt.Printf("[%s] %s user=%s reason=%q\n", at, ev.Event, ev.UserID, ev.Reason)
				continue
			}
			fmt.Printf("[%s] %s user=%s geofence=%s\n", at, ev.Event, ev.UserID, ev.GeofenceID)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
}
