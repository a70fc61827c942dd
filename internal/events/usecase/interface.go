// Package usecase implements business logic for event management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

// EventRepository defines the persistence contract for events.
type EventRepository interface {
	Create(ctx context.Context, event *eventsDomain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*eventsDomain.Event, error)
	List(ctx context.Context, limit, offset int) ([]*eventsDomain.Event, error)
	Update(ctx context.Context, event *eventsDomain.Event) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// EventInput carries the admin-supplied event attributes.
type EventInput struct {
	Name          string
	MaxAttendees  int
	PriceCents    *int64
	Currency      string
	ClosesAt      *time.Time
	CapacityScope eventsDomain.CapacityScope
}

// EventUseCase defines the operations available to the admin surface.
type EventUseCase interface {
	Create(ctx context.Context, input EventInput) (*eventsDomain.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*eventsDomain.Event, error)
	List(ctx context.Context, limit, offset int) ([]*eventsDomain.Event, error)
	Update(ctx context.Context, id uuid.UUID, input EventInput) (*eventsDomain.Event, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
