package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	dbpool *pgxpool.Pool
}

var (
	pgOnce sync.Once
)

func New(dbAddr string) (*Storage, error) {
	const op = "storage.postgres.New"

	var (
		dbpool *pgxpool.Pool
		err    error
	)

	//single instance of the db
	pgOnce.Do(func() {
		dbpool, err = pgxpool.New(context.Background(), dbAddr)
	})

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{dbpool: dbpool}, nil
}

func (s *Storage) SaveUser(ctx context.Context, email string, passHash []byte) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := "INSERT INTO users(id,email,pass_hash,role) VALUES(@userId,@userEmail,@userPassHash,@userRole) RETURNING id,email,pass_hash,role"
	args := pgx.NamedArgs{
		"userId":       uuid.New(),
		"userEmail":    email,
		"userPassHash": passHash,
		"userRole":     "member",
	}

	user := models.User{}
	err := s.dbpool.QueryRow(
		ctx,
		query,
		args,
	).Scan(&user.ID, &user.Email, &user.PassHash, &user.Role)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	query := "SELECT id,email,pass_hash,role FROM users WHERE email=$1"
	var user models.User

	err := s.dbpool.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PassHash, &user.Role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) Role(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "storage.postgres.Role"

	query := "SELECT role FROM users WHERE id=$1"
	var role string
	err := s.dbpool.QueryRow(ctx, query, userID).Scan(&role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return role, nil
}

func (s *Storage) DeleteUser(ctx context.Context, email string) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := s.dbpool.Exec(ctx, "DELETE FROM users WHERE email=$1", email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (s *Storage) SaveEvent(ctx context.Context, eventType, payload string) (models.Event, error) {
	const op = "storage.postgres.SaveEvent"

	query := "INSERT INTO security_events(id,event_type,payload,status) VALUES(@eventId,@eventType,@payload,'new') RETURNING id,event_type,payload"
	args := pgx.NamedArgs{
		"eventId":   uuid.New(),
		"eventType": eventType,
		"payload":   payload,
	}

	var event models.Event
	err := s.dbpool.QueryRow(ctx, query, args).Scan(&event.ID, &event.Type, &event.Payload)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) NewEvents(ctx context.Context, limit int) ([]models.Event, error) {
	const op = "storage.postgres.NewEvents"

	query := "SELECT id,event_type,payload FROM security_events WHERE status='new' ORDER BY created_at LIMIT $1"
	rows, err := s.dbpool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Payload); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Storage) SetEventDone(ctx context.Context, eventID uuid.UUID) (models.Event, error) {
	const op = "storage.postgres.SetEventDone"

	query := "UPDATE security_events SET status='done' WHERE id=$1 RETURNING id,event_type,payload"
	var event models.Event
	err := s.dbpool.QueryRow(ctx, query, eventID).Scan(&event.ID, &event.Type, &event.Payload)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) ClosePool() {
	s.dbpool.Close()
}
