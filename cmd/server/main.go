package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/unihaven/internal/app"
	"github.com/Freeeeeet/unihaven/internal/config"
	"github.com/Freeeeeet/unihaven/internal/controller/httpapi"
	"github.com/Freeeeeet/unihaven/internal/geo"
	"github.com/Freeeeeet/unihaven/internal/notify"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"github.com/Freeeeeet/unihaven/internal/service"
	"github.com/Freeeeeet/unihaven/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	store := repository.NewPostgres(pool)

	// Геокодер: ALS, с кэшем в Redis, если он настроен
	geocoderURL := cfg.GeocoderURL
	if geocoderURL == "" {
		geocoderURL = geo.DefaultALSURL
	}
	var resolver geo.Resolver = geo.NewALSClient(geocoderURL, logger)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, geocoder cache disabled", zap.Error(err))
		} else {
			resolver = geo.NewCachedLookup(resolver, rdb, logger)
		}
	}

	var notifiers []notify.Notifier
	if cfg.EmailEnabled() {
		dialer := notify.NewSMTPDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		notifiers = append(notifiers, notify.NewEmailNotifier(dialer, cfg.SMTPFrom, store.Members(), logger))
	}
	if cfg.TelegramToken != "" {
		b, err := notify.NewBot(cfg.TelegramToken)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, notify.NewTelegramNotifier(b, store.Members(), logger))
	}
	dispatcher := notify.NewDispatcher(logger, 30*time.Second, notifiers...)
	defer dispatcher.Close()

	accommodations := service.NewAccommodationService(store, resolver, logger)
	reservations := service.NewReservationService(store, dispatcher, service.ReservationPolicy{
		AllowConfirmedCancellation: cfg.AllowConfirmedCancellation,
	}, logger)
	ratings := service.NewRatingService(store, logger)
	audit := service.NewAuditService(store)

	scheduler := app.NewScheduler(reservations, cfg.CompletionSweepInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	limiter := httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx, time.Minute, 3*time.Minute)

	handler := httpapi.NewHandler(accommodations, reservations, ratings, audit, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, store.Universities(), limiter, cfg.CORSAllowedOrigins),
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
			zap.Int("notifiers", len(notifiers)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
