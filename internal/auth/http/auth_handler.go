package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/ticketbox/internal/auth/http/dto"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
	"github.com/allisson/ticketbox/internal/httputil"
	customValidation "github.com/allisson/ticketbox/internal/validation"
)

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	authUseCase authUsecase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authUseCase authUsecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authUseCase: authUseCase, logger: logger}
}

// LoginHandler opens an admin session.
// POST /v1/admin/login
// Returns 200 OK with the bearer token.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.authUseCase.Login(c.Request.Context(), req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginResultToResponse(result))
}

// LogoutHandler revokes the current session.
// POST /v1/admin/logout - Requires an admin session.
// Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if err := h.authUseCase.Logout(c.Request.Context(), token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
