// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
)

// LoginRequest contains the admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// Validate checks the request fields.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapLoginResultToResponse converts a login result to a response.
func MapLoginResultToResponse(result *authUsecase.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}
