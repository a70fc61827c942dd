package app

import (
	"fmt"

	paymentsHTTP "github.com/allisson/ticketbox/internal/payments/http"
	paymentsRepository "github.com/allisson/ticketbox/internal/payments/repository"
	paymentsService "github.com/allisson/ticketbox/internal/payments/service"
	paymentsUsecase "github.com/allisson/ticketbox/internal/payments/usecase"
)

// PaymentSessionRepository returns the processed-session repository instance.
func (c *Container) PaymentSessionRepository() (paymentsUsecase.PaymentSessionRepository, error) {
	c.domains.paymentSessionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["paymentSessionRepo"] = fmt.Errorf("failed to get database for payment session repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.domains.paymentSessionRepo = paymentsRepository.NewMySQLPaymentSessionRepository(db)
		case "postgres":
			c.domains.paymentSessionRepo = paymentsRepository.NewPostgreSQLPaymentSessionRepository(db)
		default:
			c.initErrors["paymentSessionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["paymentSessionRepo"]; exists {
		return nil, err
	}
	return c.domains.paymentSessionRepo, nil
}

// PaymentProvider returns the payment provider client instance.
func (c *Container) PaymentProvider() paymentsService.PaymentProvider {
	c.domains.paymentProviderInit.Do(func() {
		c.domains.paymentProvider = paymentsService.NewCheckoutClient(
			c.config.PaymentProviderURL,
			c.config.PaymentProviderAPIKey,
			c.config.PaymentProviderTimeout,
		)
	})
	return c.domains.paymentProvider
}

// PaymentUseCase returns the payment coordinator, wrapped with metrics.
func (c *Container) PaymentUseCase() (paymentsUsecase.PaymentUseCase, error) {
	c.domains.paymentUseCaseInit.Do(func() {
		sessionRepo, err := c.PaymentSessionRepository()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
			return
		}
		admission, err := c.AdmissionUseCase()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
			return
		}
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["paymentUseCase"] = err
			return
		}

		useCase := paymentsUsecase.NewPaymentUseCase(
			sessionRepo,
			admission,
			eventRepo,
			c.PaymentProvider(),
			paymentsService.NewHMACWebhookVerifier(c.config.PaymentWebhookSecret),
			txManager,
			c.config.PaymentClaimTTL,
		)
		c.domains.paymentUseCase = paymentsUsecase.NewPaymentUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["paymentUseCase"]; exists {
		return nil, err
	}
	return c.domains.paymentUseCase, nil
}

// PaymentHandler returns the payment HTTP handler instance.
func (c *Container) PaymentHandler() (*paymentsHTTP.PaymentHandler, error) {
	c.domains.paymentHandlerInit.Do(func() {
		paymentUseCase, err := c.PaymentUseCase()
		if err != nil {
			c.initErrors["paymentHandler"] = err
			return
		}
		c.domains.paymentHandler = paymentsHTTP.NewPaymentHandler(paymentUseCase, c.Logger())
	})
	if err, exists := c.initErrors["paymentHandler"]; exists {
		return nil, err
	}
	return c.domains.paymentHandler, nil
}
