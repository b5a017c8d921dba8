package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/infrastructure/configs"
	"github.com/huddlehq/huddle/internal/infrastructure/events"
	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/messaging"
	"github.com/huddlehq/huddle/internal/infrastructure/metrics"
	"github.com/huddlehq/huddle/internal/infrastructure/ratelimiter"
	memrepo "github.com/huddlehq/huddle/internal/infrastructure/repository"
	"github.com/huddlehq/huddle/internal/infrastructure/tracing"
	"github.com/huddlehq/huddle/internal/infrastructure/ws"
	"github.com/huddlehq/huddle/internal/persistence/db"
	mongorepo "github.com/huddlehq/huddle/internal/persistence/repository"
	"github.com/huddlehq/huddle/internal/presentation/api"
	"github.com/huddlehq/huddle/internal/presentation/handler/health"
	"github.com/huddlehq/huddle/internal/presentation/handler/meetings"
	"github.com/huddlehq/huddle/internal/presentation/handler/rooms"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	serviceName = "huddle-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	meetingRepository := newMeetingRepository(ctx, cfg, logger)

	var publisher ws.LifecyclePublisher
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connected", nil)

		publisher = events.NewRoomPublisher(rabbitmq)

		// Start Room Consumer
		roomConsumer := events.NewRoomConsumer(rabbitmq)
		go roomConsumer.Listen()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	coordinator := ws.NewCoordinator(ws.Options{
		RoomCapacity: cfg.Rooms.Capacity,
		RoomLifetime: cfg.Rooms.Lifetime,
	}, logger, m, publisher)

	roomsHandler := rooms.NewHandler(coordinator, logger)
	meetingsHandler := meetings.NewHandler(meetingRepository)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, roomsHandler, meetingsHandler, healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server stopped with error: %v", err)
	}
}

// newMeetingRepository picks the Mongo-backed store when a URI is configured
// and the in-memory store otherwise.
func newMeetingRepository(ctx context.Context, cfg *configs.Config, logger logging.Logger) domain.MeetingRepository {
	if cfg.Mongo.URI == "" {
		logger.Info(logging.Mongo, logging.Startup, "no mongodb uri configured, using in-memory meeting store", nil)
		return memrepo.NewMeetingRepository()
	}

	mongoCfg := &db.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	}

	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}

	return mongorepo.NewMeetingRepository(db.GetDatabase(client, mongoCfg))
}
