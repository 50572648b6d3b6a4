package eventsender

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/google/uuid"
)

type EventPublisher interface {
	Publish(ctx context.Context, key, data []byte) error
}

type EventProvider interface {
	NewEvents(ctx context.Context, limit int) ([]models.Event, error)
	SetEventDone(ctx context.Context, eventID uuid.UUID) (models.Event, error)
}

// Sender drains the security-event outbox into the message broker.
// Publishing is best effort per tick; an event that fails to publish stays
// in the outbox and is retried on the next tick.
type Sender struct {
	log            *slog.Logger
	eventPublisher EventPublisher
	eventProvider  EventProvider
	stopChan       chan struct{}
}

func NewSender(
	log *slog.Logger,
	eventPublisher EventPublisher,
	eventProvider EventProvider,
) *Sender {
	return &Sender{
		log:            log,
		eventPublisher: eventPublisher,
		eventProvider:  eventProvider,
		stopChan:       make(chan struct{}),
	}
}

func (s *Sender) StartProducing(ctx context.Context, limit int, interval time.Duration) {
	const op = "service.eventsender.StartProducing"
	log := s.log.With(slog.String("op", op))

	ticker := time.NewTicker(interval)

	log.Info("starting producing events", slog.Int("limit", limit), slog.Duration("interval", interval))

	go func() {
		defer ticker.Stop()
		defer log.Info("stopped producing events")

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				events, err := s.eventProvider.NewEvents(ctx, limit)
				if err != nil {
					log.Error("failed to get new events", sl.Err(err))
					continue
				}

				wg := &sync.WaitGroup{}
				for _, event := range events {
					wg.Add(1)
					go s.processEvent(ctx, wg, event)
				}
				wg.Wait()
			}
		}
	}()
}

func (s *Sender) processEvent(ctx context.Context, wg *sync.WaitGroup, event models.Event) {
	const op = "service.eventsender.processEvent"
	log := s.log.With(slog.String("op", op))

	defer wg.Done()

	if err := s.eventPublisher.Publish(ctx, []byte(event.Type), []byte(event.Payload)); err != nil {
		log.Error("failed to publish event", sl.Err(err))
		return
	}

	if _, err := s.eventProvider.SetEventDone(ctx, event.ID); err != nil {
		log.Error("failed to mark event as done", slog.String("eventId", event.ID.String()), sl.Err(err))
		return
	}
}

func (s *Sender) StopSending() {
	close(s.stopChan)
}
