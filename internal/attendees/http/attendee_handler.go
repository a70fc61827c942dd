// Package http provides HTTP handlers for the attendee ledger: the public
// ticket lookup and the admin decrypted views.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/ticketbox/internal/attendees/http/dto"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	authHTTP "github.com/allisson/ticketbox/internal/auth/http"
	"github.com/allisson/ticketbox/internal/httputil"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// AttendeeHandler handles HTTP requests for the attendee ledger.
type AttendeeHandler struct {
	admission attendeesUsecase.AdmissionUseCase
	logger    *slog.Logger
}

// NewAttendeeHandler creates a new attendee handler.
func NewAttendeeHandler(admission attendeesUsecase.AdmissionUseCase, logger *slog.Logger) *AttendeeHandler {
	return &AttendeeHandler{admission: admission, logger: logger}
}

// TicketLookupHandler resolves a ticket token to its reservation.
// GET /v1/tickets/:token - Public.
// Returns 200 OK with the non-PII ticket view.
func (h *AttendeeHandler) TicketLookupHandler(c *gin.Context) {
	attendee, err := h.admission.FindByTicketToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAttendeeToTicketResponse(attendee))
}

// ListHandler returns the decrypted attendee list for an event.
// GET /v1/admin/events/:id/attendees?offset=0&limit=50 - Requires an admin session.
// Returns 200 OK with decrypted contact details.
func (h *AttendeeHandler) ListHandler(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid event id"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	session, ok := authHTTP.SessionFromContext(c)
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidSession, h.logger)
		return
	}

	attendees, err := h.admission.ListByEvent(c.Request.Context(), eventID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListAttendeesResponse{Data: make([]dto.AttendeeResponse, 0, len(attendees))}
	for _, attendee := range attendees {
		details, err := h.admission.Decrypt(c.Request.Context(), attendee, session.DataKey)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.Data = append(response.Data, dto.MapDetailsToResponse(details))
	}

	c.JSON(http.StatusOK, response)
}

// FlagsHandler updates the checked-in and refunded flags.
// PUT /v1/admin/attendees/:id/flags - Requires an admin session.
// Returns 204 No Content.
func (h *AttendeeHandler) FlagsHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid attendee id"), h.logger)
		return
	}

	var req dto.FlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.admission.SetFlags(c.Request.Context(), id, *req.CheckedIn, *req.Refunded); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
