package app

import (
	"fmt"

	authHTTP "github.com/allisson/ticketbox/internal/auth/http"
	authService "github.com/allisson/ticketbox/internal/auth/service"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
)

// SessionStore returns the in-memory admin session store. It never fails, so
// the key service can take it before anything else is wired.
func (c *Container) SessionStore() *authService.SessionStore {
	c.domains.sessionStoreInit.Do(func() {
		c.domains.sessionStore = authService.NewSessionStore()
	})
	return c.domains.sessionStore
}

// AuthUseCase returns the admin authentication use case instance.
func (c *Container) AuthUseCase() (authUsecase.AuthUseCase, error) {
	c.domains.authUseCaseInit.Do(func() {
		keyService, err := c.KeyService()
		if err != nil {
			c.initErrors["authUseCase"] = fmt.Errorf("failed to get key service for auth use case: %w", err)
			return
		}
		c.domains.authUseCase = authUsecase.NewAuthUseCase(
			keyService,
			c.SessionStore(),
			c.config.SessionExpiration,
		)
	})
	if err, exists := c.initErrors["authUseCase"]; exists {
		return nil, err
	}
	return c.domains.authUseCase, nil
}

// AuthHandler returns the auth HTTP handler instance.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	c.domains.authHandlerInit.Do(func() {
		authUseCase, err := c.AuthUseCase()
		if err != nil {
			c.initErrors["authHandler"] = err
			return
		}
		c.domains.authHandler = authHTTP.NewAuthHandler(authUseCase, c.Logger())
	})
	if err, exists := c.initErrors["authHandler"]; exists {
		return nil, err
	}
	return c.domains.authHandler, nil
}
