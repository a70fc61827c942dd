package app

import (
	"sync"

	attendeesHTTP "github.com/allisson/ticketbox/internal/attendees/http"
	attendeesUsecase "github.com/allisson/ticketbox/internal/attendees/usecase"
	authHTTP "github.com/allisson/ticketbox/internal/auth/http"
	authService "github.com/allisson/ticketbox/internal/auth/service"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
	eventsHTTP "github.com/allisson/ticketbox/internal/events/http"
	eventsUsecase "github.com/allisson/ticketbox/internal/events/usecase"
	keyringService "github.com/allisson/ticketbox/internal/keyring/service"
	paymentsHTTP "github.com/allisson/ticketbox/internal/payments/http"
	paymentsService "github.com/allisson/ticketbox/internal/payments/service"
	paymentsUsecase "github.com/allisson/ticketbox/internal/payments/usecase"
	"github.com/allisson/ticketbox/internal/pii"
)

// domainComponents holds the lazily-created domain singletons.
type domainComponents struct {
	// Keyring
	keyMaterialRepo keyringService.KeyMaterialRepository
	keyService      keyringService.KeyService
	indexer         *pii.Indexer

	// Auth
	sessionStore *authService.SessionStore
	authUseCase  authUsecase.AuthUseCase
	authHandler  *authHTTP.AuthHandler

	// Events
	eventRepo    eventsUsecase.EventRepository
	eventUseCase eventsUsecase.EventUseCase
	eventHandler *eventsHTTP.EventHandler

	// Attendees
	attendeeRepo     attendeesUsecase.AttendeeRepository
	admissionUseCase attendeesUsecase.AdmissionUseCase
	attendeeHandler  *attendeesHTTP.AttendeeHandler

	// Payments
	paymentSessionRepo paymentsUsecase.PaymentSessionRepository
	paymentProvider    paymentsService.PaymentProvider
	paymentUseCase     paymentsUsecase.PaymentUseCase
	paymentHandler     *paymentsHTTP.PaymentHandler

	// Initialization guards
	keyMaterialRepoInit    sync.Once
	keyServiceInit         sync.Once
	indexerInit            sync.Once
	sessionStoreInit       sync.Once
	authUseCaseInit        sync.Once
	authHandlerInit        sync.Once
	eventRepoInit          sync.Once
	eventUseCaseInit       sync.Once
	eventHandlerInit       sync.Once
	attendeeRepoInit       sync.Once
	admissionUseCaseInit   sync.Once
	attendeeHandlerInit    sync.Once
	paymentSessionRepoInit sync.Once
	paymentProviderInit    sync.Once
	paymentUseCaseInit     sync.Once
	paymentHandlerInit     sync.Once
}
