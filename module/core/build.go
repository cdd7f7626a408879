package core

import (
	"database/sql"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/nandanugg/geofence-attendance/config"
	"github.com/nandanugg/geofence-attendance/module/core/geofence"
	handler "github.com/nandanugg/geofence-attendance/module/core/internal/handler/http"
	"github.com/nandanugg/geofence-attendance/module/core/internal/handler/subscriber"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/cache"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/database/supabase"
	"github.com/nandanugg/geofence-attendance/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/geofence-attendance/module/core/service"
)

// Presence bus names and wire format, for consumers outside this module.
const (
	PresenceExchange = rabbitmq.ExchangeName
	PresenceQueue    = rabbitmq.QueueName
)

type PresenceMessage = rabbitmq.Message

func DeclarePresenceBus(ch *amqp.Channel) error {
	return rabbitmq.Declare(ch)
}

// Deps are the connections opened by the binary. DB is only required for
// the postgres store; a nil Registerer disables metrics.
type Deps struct {
	DB         *sql.DB
	AMQP       *amqp.Connection
	MQTT       mqtt.Client
	Registerer prometheus.Registerer
	Logger     zerolog.Logger
}

type Module struct {
	AttendanceSvc *service.AttendanceService
	CheckoutSvc   *service.CheckoutService
	TrackingSvc   *service.TrackingService

	storeCheck        config.DependencyCheck
	attendanceHandler *handler.AttendanceHandler
	trackingHandler   *handler.TrackingHandler
	subscriber        *subscriber.LocationSubscriber
}

func Build(cfg *config.Config, deps Deps) (*Module, error) {
	store, storeCheck, err := buildStore(cfg, deps.DB)
	if err != nil {
		return nil, err
	}

	policy, err := geofence.PolicyByName(cfg.FencePolicy)
	if err != nil {
		return nil, fmt.Errorf("fence policy: %w", err)
	}

	presencePub, err := rabbitmq.NewPresencePublisher(deps.AMQP)
	if err != nil {
		return nil, fmt.Errorf("presence publisher: %w", err)
	}

	var metrics service.Metrics = service.NoopMetrics{}
	if deps.Registerer != nil {
		metrics = service.NewPrometheusMetrics(deps.Registerer)
	}

	historyCache := cache.New(cfg.HistoryCacheMB, cfg.HistoryCacheTTL)

	attendanceSvc := service.NewAttendanceService(store.Attendance, store.Tracking, historyCache, cfg.Location, deps.Logger)
	checkoutSvc := service.NewCheckoutService(store.Attendance, store.Transactions, deps.Logger)
	trackingSvc := service.NewTrackingService(store.Attendance, store.Tracking, presencePub, service.TrackingConfig{
		Fences:       cfg.Geofences,
		Policy:       policy,
		Location:     cfg.Location,
		HistoryCache: historyCache,
	}, deps.Logger, metrics)

	return &Module{
		AttendanceSvc:     attendanceSvc,
		CheckoutSvc:       checkoutSvc,
		TrackingSvc:       trackingSvc,
		storeCheck:        storeCheck,
		attendanceHandler: handler.NewAttendanceHandler(attendanceSvc, checkoutSvc),
		trackingHandler:   handler.NewTrackingHandler(trackingSvc),
		subscriber:        subscriber.NewLocationSubscriber(deps.MQTT, trackingSvc, deps.Logger),
	}, nil
}

func buildStore(cfg *config.Config, db *sql.DB) (*database.Store, config.DependencyCheck, error) {
	switch cfg.StoreBackend {
	case config.StoreSupabase:
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		return &database.Store{
			Attendance:   supabase.NewAttendanceRepo(client),
			Tracking:     supabase.NewTrackingRepo(client),
			Transactions: supabase.NewTransactionRepo(client),
		}, config.DependencyCheck{Name: "supabase", Check: client.Ping}, nil
	case config.StorePostgres:
		if db == nil {
			return nil, config.DependencyCheck{}, fmt.Errorf("postgres store: no database connection")
		}
		return &database.Store{
			Attendance:   postgres.NewAttendanceRepo(db),
			Tracking:     postgres.NewTrackingRepo(db),
			Transactions: postgres.NewTransactionRepo(db),
		}, config.PostgresCheck(db), nil
	default:
		return nil, config.DependencyCheck{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// StoreCheck reports the health of whichever row store was built.
func (m *Module) StoreCheck() config.DependencyCheck {
	return m.storeCheck
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.attendanceHandler.Register(r)
	m.trackingHandler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}
