// Package http provides HTTP handlers for event management.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/ticketbox/internal/events/http/dto"
	eventsUsecase "github.com/allisson/ticketbox/internal/events/usecase"
	"github.com/allisson/ticketbox/internal/httputil"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// EventHandler handles HTTP requests for event management.
type EventHandler struct {
	eventUseCase eventsUsecase.EventUseCase
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventUseCase eventsUsecase.EventUseCase, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventUseCase: eventUseCase, logger: logger}
}

// CreateHandler creates a new event.
// POST /v1/admin/events - Requires an admin session.
// Returns 201 Created with the event.
func (h *EventHandler) CreateHandler(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	event, err := h.eventUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEventToResponse(event))
}

// GetHandler retrieves an event by id.
// GET /v1/events/:id - Public.
// Returns 200 OK with the event.
func (h *EventHandler) GetHandler(c *gin.Context) {
	id, err := parseEventID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	event, err := h.eventUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}

// ListHandler retrieves events with pagination support.
// GET /v1/events?offset=0&limit=50 - Public.
// Returns 200 OK with the paginated event list.
func (h *EventHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.List(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// UpdateHandler applies admin changes to an event.
// PUT /v1/admin/events/:id - Requires an admin session.
// Returns 200 OK with the updated event.
func (h *EventHandler) UpdateHandler(c *gin.Context) {
	id, err := parseEventID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	event, err := h.eventUseCase.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventToResponse(event))
}

// DeactivateHandler soft-closes an event.
// DELETE /v1/admin/events/:id - Requires an admin session.
// Returns 204 No Content.
func (h *EventHandler) DeactivateHandler(c *gin.Context) {
	id, err := parseEventID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.eventUseCase.Deactivate(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// parseEventID extracts and parses the :id URL parameter.
func parseEventID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid event id")
	}
	return id, nil
}
