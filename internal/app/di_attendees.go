package app

import (
	"fmt"

	attendeesHTTP "github.com/allisson/ticketbox/internal/attendees/http"
	attendeesRepository "github.com/allisson/ticketbox/internal/attendees/repository"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
)

// AttendeeRepository returns the attendee repository instance.
func (c *Container) AttendeeRepository() (attendeesUsecase.AttendeeRepository, error) {
	c.domains.attendeeRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["attendeeRepo"] = fmt.Errorf("failed to get database for attendee repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.domains.attendeeRepo = attendeesRepository.NewMySQLAttendeeRepository(db)
		case "postgres":
			c.domains.attendeeRepo = attendeesRepository.NewPostgreSQLAttendeeRepository(db)
		default:
			c.initErrors["attendeeRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["attendeeRepo"]; exists {
		return nil, err
	}
	return c.domains.attendeeRepo, nil
}

// AdmissionUseCase returns the admission use case, wrapped with metrics.
func (c *Container) AdmissionUseCase() (attendeesUsecase.AdmissionUseCase, error) {
	c.domains.admissionUseCaseInit.Do(func() {
		attendeeRepo, err := c.AttendeeRepository()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}
		keyService, err := c.KeyService()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}
		indexer, err := c.Indexer()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["admissionUseCase"] = err
			return
		}

		useCase := attendeesUsecase.NewAdmissionUseCase(attendeeRepo, eventRepo, keyService, indexer, txManager)
		c.domains.admissionUseCase = attendeesUsecase.NewAdmissionUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["admissionUseCase"]; exists {
		return nil, err
	}
	return c.domains.admissionUseCase, nil
}

// AttendeeHandler returns the attendee HTTP handler instance.
func (c *Container) AttendeeHandler() (*attendeesHTTP.AttendeeHandler, error) {
	c.domains.attendeeHandlerInit.Do(func() {
		admission, err := c.AdmissionUseCase()
		if err != nil {
			c.initErrors["attendeeHandler"] = err
			return
		}
		c.domains.attendeeHandler = attendeesHTTP.NewAttendeeHandler(admission, c.Logger())
	})
	if err, exists := c.initErrors["attendeeHandler"]; exists {
		return nil, err
	}
	return c.domains.attendeeHandler, nil
}
