// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
)

// TicketResponse is the public view of a reservation, looked up by ticket
// token. It intentionally carries no contact details.
type TicketResponse struct {
	EventID   string     `json:"event_id"`
	EventDate *time.Time `json:"event_date,omitempty"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"created_at"`
}

// MapAttendeeToTicketResponse converts an attendee row to the public ticket view.
func MapAttendeeToTicketResponse(attendee *attendeesDomain.Attendee) TicketResponse {
	return TicketResponse{
		EventID:   attendee.EventID.String(),
		EventDate: attendee.EventDate,
		Quantity:  attendee.Quantity,
		CreatedAt: attendee.CreatedAt,
	}
}

// AttendeeResponse is the decrypted admin view of an attendee.
type AttendeeResponse struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	EventDate  *time.Time `json:"event_date,omitempty"`
	Quantity   int        `json:"quantity"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	Address    *string    `json:"address,omitempty"`
	PaymentRef *string    `json:"payment_ref,omitempty"`
	CheckedIn  bool       `json:"checked_in"`
	Refunded   bool       `json:"refunded"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MapDetailsToResponse converts decrypted attendee details to a response.
func MapDetailsToResponse(details *attendeesDomain.AttendeeDetails) AttendeeResponse {
	return AttendeeResponse{
		ID:         details.ID.String(),
		EventID:    details.EventID.String(),
		EventDate:  details.EventDate,
		Quantity:   details.Quantity,
		Name:       details.Name,
		Email:      details.Email,
		Phone:      details.Phone,
		Address:    details.Address,
		PaymentRef: details.PaymentRef,
		CheckedIn:  details.CheckedIn,
		Refunded:   details.Refunded,
		CreatedAt:  details.CreatedAt,
	}
}

// ListAttendeesResponse represents a paginated decrypted attendee list.
type ListAttendeesResponse struct {
	Data []AttendeeResponse `json:"data"`
}
