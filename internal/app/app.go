package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/handlers"
	httpapp "github.com/JanAndriessens/CalyClub-sub002/internal/app/http"
	metricsapp "github.com/JanAndriessens/CalyClub-sub002/internal/app/metrics"
	storageapp "github.com/JanAndriessens/CalyClub-sub002/internal/app/storage"
	redisapp "github.com/JanAndriessens/CalyClub-sub002/internal/app/storage/redis"
	"github.com/JanAndriessens/CalyClub-sub002/internal/clients/recaptcha"
	"github.com/JanAndriessens/CalyClub-sub002/internal/config"
	"github.com/JanAndriessens/CalyClub-sub002/internal/kafka"
	jwtlib "github.com/JanAndriessens/CalyClub-sub002/internal/lib/jwt"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/access"
	authservice "github.com/JanAndriessens/CalyClub-sub002/internal/services/auth"
	eventsender "github.com/JanAndriessens/CalyClub-sub002/internal/services/eventsender"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/lockout"
	"github.com/JanAndriessens/CalyClub-sub002/internal/services/risk"
)

const (
	eventsLimit       = 100
	producingInterval = time.Second

	shutdownTimeout = 10 * time.Second
)

type App struct {
	httpServer  *httpapp.App
	metrics     *metricsapp.App
	storage     *storageapp.App
	redis       *redisapp.App
	producer    *kafka.Producer
	eventSender *eventsender.Sender
}

func New(log *slog.Logger, cfg *config.Config) *App {
	metrics := metricsapp.New(log, cfg.MetricsPort)

	storage := storageapp.MustCreateApp(cfg.Env, cfg.PostgresAddr, cfg.StoragePath, log)

	// record TTL sits above the lock window so lock expiry is always
	// decided by LockedUntil, never by Redis
	redisApp := redisapp.New(log, cfg.RedisAddr, lockout.LockDuration+5*time.Minute)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	sender := eventsender.NewSender(log, producer, storage.Storage)

	lockoutService := lockout.New(
		log,
		redisApp.Storage,
		storage.Storage,
		metrics.FailedLoginsCounter,
		metrics.AccountLockoutsCounter,
	)

	authService := authservice.New(
		log,
		storage.Storage,
		storage.Storage,
		lockoutService,
		cfg.TokenSecret,
		cfg.TokenTTL,
	)

	accessService := access.New(log, jwtlib.NewVerifier(cfg.TokenSecret), storage.Storage)
	riskService := risk.New(log, recaptcha.New(cfg.RecaptchaSecret, cfg.RecaptchaVerifyURL))

	handler := handlers.New(log, authService, redisApp.Storage)

	httpOpts := httpapp.AppOpts{
		Log:            log,
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	httpApp := httpapp.New(httpOpts, handler, accessService, riskService, metrics.HTTPRequestsCounter)

	return &App{
		httpServer:  httpApp,
		metrics:     metrics,
		storage:     storage,
		redis:       redisApp,
		producer:    producer,
		eventSender: sender,
	}
}

func (a *App) MustRun() {
	go a.httpServer.MustRun()
	go a.metrics.MustRun()
	a.eventSender.StartProducing(context.Background(), eventsLimit, producingInterval)
}

func (a *App) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.httpServer.Stop(ctx)

	a.eventSender.StopSending()
	if closeErr := a.producer.Close(); err == nil {
		err = closeErr
	}

	a.storage.Stop()
	if redisErr := a.redis.Stop(); err == nil {
		err = redisErr
	}

	return err
}
