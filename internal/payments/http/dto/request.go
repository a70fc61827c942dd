// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	attendeesDomain "github.com/allisson/ticketbox/internal/attendees/domain"
	paymentsUsecase "github.com/allisson/ticketbox/internal/payments/usecase"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// ContactRequest carries the booker's contact details.
type ContactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// Validate checks the contact fields.
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, customValidation.Email),
	)
}

// ToDomain converts the contact request to the domain model.
func (r ContactRequest) ToDomain() attendeesDomain.ContactDetails {
	return attendeesDomain.ContactDetails{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// ItemRequest is one admission line of a purchase.
type ItemRequest struct {
	EventDate *time.Time `json:"event_date"`
	Quantity  int        `json:"quantity"`
}

// Validate checks the item fields.
func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

// CheckoutRequest starts a purchase.
type CheckoutRequest struct {
	EventID    string         `json:"event_id"`
	Items      []ItemRequest  `json:"items"`
	Contact    ContactRequest `json:"contact"`
	SuccessURL string         `json:"success_url"`
	CancelURL  string         `json:"cancel_url"`
}

// Validate checks the request fields.
func (r CheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EventID, validation.Required, validation.By(validUUID)),
		validation.Field(&r.Items, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Contact),
	)
}

// ToInput converts the request to a use case input.
func (r CheckoutRequest) ToInput() paymentsUsecase.CheckoutInput {
	return paymentsUsecase.CheckoutInput{
		EventID:    uuid.MustParse(r.EventID),
		Items:      mapItems(r.Items),
		Contact:    r.Contact.ToDomain(),
		SuccessURL: r.SuccessURL,
		CancelURL:  r.CancelURL,
	}
}

// CompleteRequest finishes a paid purchase after the provider redirect.
type CompleteRequest struct {
	SessionID string         `json:"session_id"`
	EventID   string         `json:"event_id"`
	Items     []ItemRequest  `json:"items"`
	Contact   ContactRequest `json:"contact"`
}

// Validate checks the request fields.
func (r CompleteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.EventID, validation.Required, validation.By(validUUID)),
		validation.Field(&r.Items, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Contact),
	)
}

// ToInput converts the request to a use case input.
func (r CompleteRequest) ToInput() paymentsUsecase.CompletionInput {
	return paymentsUsecase.CompletionInput{
		SessionID: r.SessionID,
		EventID:   uuid.MustParse(r.EventID),
		Items:     mapItems(r.Items),
		Contact:   r.Contact.ToDomain(),
	}
}

// mapItems converts item requests to use case items.
func mapItems(items []ItemRequest) []paymentsUsecase.CheckoutItem {
	out := make([]paymentsUsecase.CheckoutItem, 0, len(items))
	for _, item := range items {
		out = append(out, paymentsUsecase.CheckoutItem{
			EventDate: item.EventDate,
			Quantity:  item.Quantity,
		})
	}
	return out
}

// validUUID is a validation.By rule for uuid string fields.
func validUUID(value interface{}) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid uuid")
	}
	return nil
}
