package app

import (
	"fmt"

	eventsHTTP "github.com/allisson/ticketbox/internal/events/http"
	eventsRepository "github.com/allisson/ticketbox/internal/events/repository"
	eventsUsecase "github.com/allisson/ticketbox/internal/events/usecase"
)

// EventRepository returns the event repository instance.
func (c *Container) EventRepository() (eventsUsecase.EventRepository, error) {
	c.domains.eventRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["eventRepo"] = fmt.Errorf("failed to get database for event repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.domains.eventRepo = eventsRepository.NewMySQLEventRepository(db)
		case "postgres":
			c.domains.eventRepo = eventsRepository.NewPostgreSQLEventRepository(db)
		default:
			c.initErrors["eventRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["eventRepo"]; exists {
		return nil, err
	}
	return c.domains.eventRepo, nil
}

// EventUseCase returns the event use case instance.
func (c *Container) EventUseCase() (eventsUsecase.EventUseCase, error) {
	c.domains.eventUseCaseInit.Do(func() {
		repo, err := c.EventRepository()
		if err != nil {
			c.initErrors["eventUseCase"] = err
			return
		}
		c.domains.eventUseCase = eventsUsecase.NewEventUseCase(repo)
	})
	if err, exists := c.initErrors["eventUseCase"]; exists {
		return nil, err
	}
	return c.domains.eventUseCase, nil
}

// EventHandler returns the event HTTP handler instance.
func (c *Container) EventHandler() (*eventsHTTP.EventHandler, error) {
	c.domains.eventHandlerInit.Do(func() {
		useCase, err := c.EventUseCase()
		if err != nil {
			c.initErrors["eventHandler"] = err
			return
		}
		c.domains.eventHandler = eventsHTTP.NewEventHandler(useCase, c.Logger())
	})
	if err, exists := c.initErrors["eventHandler"]; exists {
		return nil, err
	}
	return c.domains.eventHandler, nil
}
