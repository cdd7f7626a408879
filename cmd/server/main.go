package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/config"
	"github.com/nandanugg/geofence-attendance/module/core"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	logger := config.NewLogger(cfg)

	var db *sql.DB
	if cfg.StoreBackend == config.StorePostgres {
		db, err = config.NewPostgres(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer func() { _ = db.Close() }()
	}

	amqpConn, err := config.NewRabbitMQ(cfg, "attendance-server")
	if err != nil {
		logger.Fatal().Err(err).Msg("rabbitmq")
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("mqtt")
	}
	defer mqttClient.Disconnect(250)

	var reg *prometheus.Registry
	deps := core.Deps{DB: db, AMQP: amqpConn, MQTT: mqttClient, Logger: logger}
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Registerer = reg
	}

	coreModule, err := core.Build(cfg, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("core module")
	}

	if err := coreModule.StartSubscribers(); err != nil {
		logger.Fatal().Err(err).Msg("start subscribers")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	health := config.NewHealthChecker(
		coreModule.StoreCheck(),
		config.RabbitMQCheck(amqpConn),
		config.MQTTCheck(mqttClient),
	)
	health.Register(r)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	coreModule.RegisterRoutes(r.Group("/api"))

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Int("geofences", len(cfg.Geofences)).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logger.Error()
			if len(c.Errors) > 0 {
				ev = ev.Err(c.Errors.Last().Err)
			}
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
