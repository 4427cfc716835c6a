package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/busbooking/api"
	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/bootstrap"
	"github.com/Domenick1991/busbooking/internal/cache"
	"github.com/Domenick1991/busbooking/internal/kafka"
	"github.com/Domenick1991/busbooking/internal/logger"
	"github.com/Domenick1991/busbooking/internal/notify"
	"github.com/Domenick1991/busbooking/internal/payment"
	"github.com/Domenick1991/busbooking/internal/repository"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"github.com/Domenick1991/busbooking/internal/service/support"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log, "busbooking-api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.Auth.JWTSecret == "" {
		zlog.Fatal("auth.jwt_secret (JWT_SECRET) is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var health []api.HealthCheck

	store := repository.NewMemoryStore()
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			zlog.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				zlog.Fatal("migrate postgres", zap.Error(err))
			}
		}
		store = repository.NewPGStore(pool)
		health = append(health, api.HealthCheck{Name: "postgres", Check: pool.Ping})
	} else {
		zlog.Warn("database not configured, using in-memory store")
	}

	catalogOpts := []catalog.CatalogServiceOption{catalog.WithLogger(zlog)}
	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(zlog)}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SchedulesCacheSeconds)*time.Second)
		defer func() { _ = redisCache.Close() }()
		catalogOpts = append(catalogOpts, catalog.WithCache(redisCache))
		bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		health = append(health, api.HealthCheck{Name: "redis", Check: redisCache.Ping})
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog)
		defer func() { _ = producer.Close() }()
		if err := producer.CheckConnection(ctx); err != nil {
			zlog.Warn("kafka not reachable at startup", zap.Error(err))
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
		health = append(health, api.HealthCheck{Name: "kafka", Check: producer.CheckConnection})
	}

	// With a notifications topic the worker delivers confirmations; otherwise
	// they are delivered in-process.
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		dispatcher, err := notify.NewDispatcher(notify.New(cfg.Notifier, zlog), cfg.Booking.TrackingURLBase, zlog)
		if err != nil {
			zlog.Fatal("start notification dispatcher", zap.Error(err))
		}
		defer func() { _ = dispatcher.Close() }()
		bookingOpts = append(bookingOpts, booking.WithDispatcher(dispatcher))
	}

	gateway := payment.NewSimulator(
		time.Duration(cfg.Booking.PaymentDelayMillis)*time.Millisecond,
		cfg.Booking.PaymentDeclineRate,
	)

	catalogService := catalog.NewCatalogService(store, catalogOpts...)
	bookingService := booking.NewBookingService(store.Bookings, store.Schedules, gateway, bookingOpts...)
	defer bookingService.Close()
	supportService := support.NewSupportService(store.Support)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinute)*time.Minute)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Bookings: bookingService,
		Catalog:  catalogService,
		Support:  supportService,
		Tokens:   tokens,
		Health:   health,
	}, zlog)
	if err != nil {
		zlog.Error("server error", zap.Error(err))
	}
}
