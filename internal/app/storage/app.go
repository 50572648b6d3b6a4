package storageapp

import (
	"context"
	"log/slog"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage/postgres"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage/sqlite"
	"github.com/google/uuid"
)

// Storage is the relational store shared by the auth service, the access
// guard and the event outbox. Postgres serves every deployed env; the local
// env runs on a sqlite file.
type Storage interface {
	SaveUser(ctx context.Context, email string, passHash []byte) (models.User, error)
	User(ctx context.Context, email string) (models.User, error)
	Role(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteUser(ctx context.Context, email string) error
	SaveEvent(ctx context.Context, eventType, payload string) (models.Event, error)
	NewEvents(ctx context.Context, limit int) ([]models.Event, error)
	SetEventDone(ctx context.Context, eventID uuid.UUID) (models.Event, error)
}

type App struct {
	Storage Storage
	log     *slog.Logger
	stop    func()
}

func MustCreateApp(env, dbAddr, storagePath string, log *slog.Logger) *App {
	if env == "local" {
		store, err := sqlite.New(storagePath)
		if err != nil {
			panic(err)
		}

		return &App{
			log:     log,
			Storage: store,
			stop: func() {
				if err := store.Close(); err != nil {
					log.Error("failed to close sqlite storage", sl.Err(err))
				}
			},
		}
	}

	store, err := postgres.New(dbAddr)
	if err != nil {
		panic(err)
	}

	return &App{log: log, Storage: store, stop: store.ClosePool}
}

func (a *App) Stop() {
	const op = "storageapp.Stop"
	a.log.With(slog.String("op", op)).Info("stopping storage app")
	a.stop()
}
