package dto

import (
	"time"

	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
)

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	MaxAttendees  int        `json:"max_attendees"`
	PriceCents    *int64     `json:"price_cents,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	ClosesAt      *time.Time `json:"closes_at,omitempty"`
	CapacityScope string     `json:"capacity_scope"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MapEventToResponse converts a domain event to a response.
func MapEventToResponse(event *eventsDomain.Event) EventResponse {
	return EventResponse{
		ID:            event.ID.String(),
		Name:          event.Name,
		MaxAttendees:  event.MaxAttendees,
		PriceCents:    event.PriceCents,
		Currency:      event.Currency,
		ClosesAt:      event.ClosesAt,
		CapacityScope: string(event.CapacityScope),
		Active:        event.Active,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
}

// ListEventsResponse represents a paginated list of events in API responses.
type ListEventsResponse struct {
	Data []EventResponse `json:"data"`
}

// MapEventsToListResponse converts a slice of domain events to a list response.
func MapEventsToListResponse(events []*eventsDomain.Event) ListEventsResponse {
	data := make([]EventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}
	return ListEventsResponse{Data: data}
}
