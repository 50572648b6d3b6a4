package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/storage"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Storage is the local-env variant of the relational store, file-backed.
type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) SaveUser(ctx context.Context, email string, passHash []byte) (models.User, error) {
	const op = "storage.sqlite.SaveUser"

	stmt, err := s.db.Prepare("INSERT INTO users(id,email,pass_hash,role) VALUES(?,?,?,'member') RETURNING id,email,pass_hash,role")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{}

	row := stmt.QueryRowContext(ctx, uuid.New(), email, passHash)
	if err := row.Scan(&user.ID, &user.Email, &user.PassHash, &user.Role); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.sqlite.User"

	stmt, err := s.db.Prepare("SELECT id,email,pass_hash,role FROM users WHERE email=?")
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	row := stmt.QueryRowContext(ctx, email)
	if err := row.Scan(&user.ID, &user.Email, &user.PassHash, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) Role(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "storage.sqlite.Role"

	stmt, err := s.db.Prepare("SELECT role FROM users WHERE id=?")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var role string
	if err := stmt.QueryRowContext(ctx, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return role, nil
}

func (s *Storage) DeleteUser(ctx context.Context, email string) error {
	const op = "storage.sqlite.DeleteUser"

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE email=?", email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (s *Storage) SaveEvent(ctx context.Context, eventType, payload string) (models.Event, error) {
	const op = "storage.sqlite.SaveEvent"

	stmt, err := s.db.Prepare("INSERT INTO security_events(id,event_type,payload,status) VALUES(?,?,?,'new') RETURNING id,event_type,payload")
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	var event models.Event
	row := stmt.QueryRowContext(ctx, uuid.New(), eventType, payload)
	if err := row.Scan(&event.ID, &event.Type, &event.Payload); err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) NewEvents(ctx context.Context, limit int) ([]models.Event, error) {
	const op = "storage.sqlite.NewEvents"

	rows, err := s.db.QueryContext(ctx, "SELECT id,event_type,payload FROM security_events WHERE status='new' ORDER BY created_at LIMIT ?", limit)
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
	const op = "storage.sqlite.SetEventDone"

	stmt, err := s.db.Prepare("UPDATE security_events SET status='done' WHERE id=? RETURNING id,event_type,payload")
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	var event models.Event
	if err := stmt.QueryRowContext(ctx, eventID).Scan(&event.ID, &event.Type, &event.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}

		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) Close() error {
	const op = "storage.sqlite.Close"

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
