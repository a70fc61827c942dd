// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	eventsDomain "github.com/allisson/ticketbox/internal/events/domain"
	eventsUsecase "github.com/allisson/ticketbox/internal/events/usecase"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// EventRequest contains the parameters for creating or updating an event.
type EventRequest struct {
	Name          string     `json:"name"`
	MaxAttendees  int        `json:"max_attendees"`
	PriceCents    *int64     `json:"price_cents"`
	Currency      string     `json:"currency"`
	ClosesAt      *time.Time `json:"closes_at"`
	CapacityScope string     `json:"capacity_scope"`
}

// Validate checks the request fields.
func (r EventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.MaxAttendees, validation.Required, validation.Min(1)),
		validation.Field(&r.Currency, validation.When(r.PriceCents != nil, validation.Required, customValidation.Currency)),
		validation.Field(&r.CapacityScope, validation.Required, validation.In(
			string(eventsDomain.ScopeEvent),
			string(eventsDomain.ScopePerDate),
		)),
	)
}

// ToInput converts the request to a use case input.
func (r EventRequest) ToInput() eventsUsecase.EventInput {
	return eventsUsecase.EventInput{
		Name:          r.Name,
		MaxAttendees:  r.MaxAttendees,
		PriceCents:    r.PriceCents,
		Currency:      r.Currency,
		ClosesAt:      r.ClosesAt,
		CapacityScope: eventsDomain.CapacityScope(r.CapacityScope),
	}
}
