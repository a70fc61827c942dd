package dto

import (
	"github.com/google/uuid"

	paymentsUsecase "github.com/allisson/ticketbox/internal/payments/usecase"
)

// TicketGrant pairs an admitted attendee with its one-time ticket token.
type TicketGrant struct {
	AttendeeID  string `json:"attendee_id"`
	TicketToken string `json:"ticket_token"`
}

// CheckoutResponse is either a provider redirect or an immediate admission.
type CheckoutResponse struct {
	SessionID   string        `json:"session_id,omitempty"`
	CheckoutURL string        `json:"checkout_url,omitempty"`
	Free        bool          `json:"free"`
	Tickets     []TicketGrant `json:"tickets,omitempty"`
}

// MapCheckoutResultToResponse converts a checkout result to a response.
func MapCheckoutResultToResponse(result *paymentsUsecase.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		SessionID:   result.SessionID,
		CheckoutURL: result.CheckoutURL,
		Free:        result.Free,
		Tickets:     mapGrants(result.AttendeeIDs, result.TicketTokens),
	}
}

// CompletionResponse is the outcome of a completion attempt. Replays carry
// attendee ids but no tokens.
type CompletionResponse struct {
	Tickets     []TicketGrant `json:"tickets,omitempty"`
	AttendeeIDs []string      `json:"attendee_ids"`
	Replayed    bool          `json:"replayed"`
}

// MapCompletionResultToResponse converts a completion result to a response.
func MapCompletionResultToResponse(result *paymentsUsecase.CompletionResult) CompletionResponse {
	ids := make([]string, 0, len(result.AttendeeIDs))
	for _, id := range result.AttendeeIDs {
		ids = append(ids, id.String())
	}

	response := CompletionResponse{
		AttendeeIDs: ids,
		Replayed:    result.Replayed,
	}
	if !result.Replayed {
		response.Tickets = mapGrants(result.AttendeeIDs, result.TicketTokens)
	}
	return response
}

// mapGrants zips attendee ids with their tokens.
func mapGrants(ids []uuid.UUID, tokens []string) []TicketGrant {
	if len(ids) != len(tokens) {
		return nil
	}
	grants := make([]TicketGrant, 0, len(ids))
	for i, id := range ids {
		grants = append(grants, TicketGrant{AttendeeID: id.String(), TicketToken: tokens[i]})
	}
	return grants
}
