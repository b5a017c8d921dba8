package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huddlehq/huddle/internal/infrastructure/configs"
	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/ratelimiter"
	healthHandler "github.com/huddlehq/huddle/internal/presentation/handler/health"
	meetingsHandler "github.com/huddlehq/huddle/internal/presentation/handler/meetings"
	roomsHandler "github.com/huddlehq/huddle/internal/presentation/handler/rooms"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config          configs.Config
	roomsHandler    *roomsHandler.Handler
	meetingsHandler *meetingsHandler.Handler
	healthHandler   *healthHandler.Handler
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomsHandler *roomsHandler.Handler,
	meetingsHandler *meetingsHandler.Handler,
	healthHandler *healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		roomsHandler:    roomsHandler,
		meetingsHandler: meetingsHandler,
		healthHandler:   healthHandler,
		logger:          logger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.loggerMiddleware)
	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		// REST handlers get a request deadline; the websocket route below
		// stays outside it since a signaling socket is long-lived.
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/meetings", func(r chi.Router) {
			r.Post("/", app.meetingsHandler.CreateMeetingHandler)
			r.Get("/", app.meetingsHandler.ListMeetingsHandler)
			r.Get("/{meetingId}", app.meetingsHandler.GetMeetingHandler)
			r.Delete("/{meetingId}", app.meetingsHandler.DeleteMeetingHandler)
		})

		r.Get("/rooms/{roomId}/participants", app.roomsHandler.GetParticipantsHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Get("/ws", app.roomsHandler.ServeWS)
	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(r, "huddle-http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
