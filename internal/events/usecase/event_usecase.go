package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/ticketbox/internal/errors"
	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

// eventUseCase implements EventUseCase.
type eventUseCase struct {
	eventRepo EventRepository
}

// NewEventUseCase creates a new event use case.
func NewEventUseCase(eventRepo EventRepository) EventUseCase {
	return &eventUseCase{eventRepo: eventRepo}
}

// Create validates and persists a new event.
func (u *eventUseCase) Create(
	ctx context.Context,
	input EventInput,
) (*eventsDomain.Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &eventsDomain.Event{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          input.Name,
		MaxAttendees:  input.MaxAttendees,
		PriceCents:    input.PriceCents,
		Currency:      input.Currency,
		ClosesAt:      input.ClosesAt,
		CapacityScope: input.CapacityScope,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Get retrieves an event by id.
func (u *eventUseCase) Get(ctx context.Context, id uuid.UUID) (*eventsDomain.Event, error) {
	return u.eventRepo.GetByID(ctx, id)
}

// List returns a page of events.
func (u *eventUseCase) List(
	ctx context.Context,
	limit, offset int,
) ([]*eventsDomain.Event, error) {
	return u.eventRepo.List(ctx, limit, offset)
}

// Update applies admin changes to an event. Shrinking MaxAttendees below the
// committed subtotal is allowed: existing attendees keep their seats and the
// admission guard simply rejects everything from then on.
func (u *eventUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input EventInput,
) (*eventsDomain.Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := u.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Name = input.Name
	event.MaxAttendees = input.MaxAttendees
	event.PriceCents = input.PriceCents
	event.Currency = input.Currency
	event.ClosesAt = input.ClosesAt
	event.CapacityScope = input.CapacityScope
	event.UpdatedAt = time.Now().UTC()

	if err := u.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// Deactivate soft-closes an event; attendee rows stay untouched.
func (u *eventUseCase) Deactivate(ctx context.Context, id uuid.UUID) error {
	return u.eventRepo.Deactivate(ctx, id)
}

// validateInput checks cross-field invariants the DTO layer cannot express.
func validateInput(input EventInput) error {
	if input.MaxAttendees <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "max attendees must be positive")
	}
	if input.PriceCents != nil && *input.PriceCents <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "price must be positive or absent")
	}
	if input.PriceCents != nil && input.Currency == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "priced events require a currency")
	}
	switch input.CapacityScope {
	case eventsDomain.ScopeEvent, eventsDomain.ScopePerDate:
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown capacity scope")
	}
	return nil
}
