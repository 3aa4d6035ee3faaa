package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hopewell-clinic/booking-api/internal/config"
	"github.com/hopewell-clinic/booking-api/internal/handler"
	appointmentHandler "github.com/hopewell-clinic/booking-api/internal/handler/appointment"
	bookingHandler "github.com/hopewell-clinic/booking-api/internal/handler/booking"
	catalogHandler "github.com/hopewell-clinic/booking-api/internal/handler/catalog"
	shiftHandler "github.com/hopewell-clinic/booking-api/internal/handler/shift"
	"github.com/hopewell-clinic/booking-api/internal/middleware"
	"github.com/hopewell-clinic/booking-api/internal/model"
	"github.com/hopewell-clinic/booking-api/internal/repository/postgres"
	"github.com/hopewell-clinic/booking-api/internal/router"
	appointmentService "github.com/hopewell-clinic/booking-api/internal/service/appointment"
	bookingService "github.com/hopewell-clinic/booking-api/internal/service/booking"
	catalogService "github.com/hopewell-clinic/booking-api/internal/service/catalog"
	"github.com/hopewell-clinic/booking-api/internal/service/notification"
	shiftService "github.com/hopewell-clinic/booking-api/internal/service/shift"
	slotService "github.com/hopewell-clinic/booking-api/internal/service/slot"
	"github.com/hopewell-clinic/booking-api/pkg/logger"
	"github.com/hopewell-clinic/booking-api/pkg/metrics"
	"github.com/hopewell-clinic/booking-api/pkg/schedclient"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	shiftRepo := postgres.NewShiftRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	m := metrics.NewMetrics("hopewell", "booking")

	// Services
	shiftSvc := shiftService.NewService(shiftRepo, zl)
	generator := slotService.NewGenerator(cfg.Booking.Granularity(), zl, m)
	slotSvc := slotService.NewService(shiftSvc, appointmentRepo, generator)
	catalogSvc := catalogService.NewService(serviceRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, serviceRepo, zl)

	notifier := notification.NewNoopService()
	if cfg.SMTP.Host != "" {
		notifier = notification.NewEmailService(cfg.SMTP, zl)
	}

	// Upstream scheduling service client
	upstream, err := schedclient.New(schedclient.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		Timeout:      cfg.Upstream.Timeout(),
		MaxRetries:   cfg.Upstream.MaxRetries,
		RetryBackoff: cfg.Upstream.RetryBackoff(),
		TokenProvider: func(context.Context) (string, error) {
			return cfg.Upstream.Token, nil
		},
	}, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build scheduling client")
	}

	// Wizard sessions live in Redis when configured, in memory otherwise.
	store := bookingService.NewMemoryStore(cfg.Booking.DraftTTL())
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		store = bookingService.NewRedisStore(redis.NewClient(opts), cfg.Booking.DraftTTL())
	}

	workflow := bookingService.NewWorkflow(
		upstream,
		doctorRepo,
		appointmentSvc,
		shiftSvc,
		slotSvc,
		catalogSvc,
		appointmentSvc,
		notifier,
		store,
		bookingService.Config{
			Granularity:    cfg.Booking.Granularity(),
			NotesMaxLength: cfg.Booking.NotesLimit(),
			FetchTimeout:   cfg.Booking.FetchTimeout(),
			DefaultWindow:  defaultWindow(cfg.Booking),
		},
		zl,
		m,
	)

	// Handlers
	h := handler.NewHandler(db)
	bookingH := bookingHandler.NewHandler(workflow)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, slotSvc)
	shiftH := shiftHandler.NewHandler(doctorRepo, shiftSvc)
	catalogH := catalogHandler.NewHandler(catalogSvc)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authMiddleware,
		bookingH,
		appointmentH,
		shiftH,
		catalogH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Server.RateLimit()),
			RateBurst:     cfg.Server.RateBurst(),
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func defaultWindow(cfg config.BookingConfig) model.DutyWindow {
	start, err := model.ParseTimeOfDay(cfg.DefaultDayStart)
	if err != nil {
		start, _ = model.ParseTimeOfDay("09:00")
	}
	end, err := model.ParseTimeOfDay(cfg.DefaultDayEnd)
	if err != nil || end <= start {
		end, _ = model.ParseTimeOfDay("17:00")
	}
	return model.DutyWindow{Start: start, End: end}
}
