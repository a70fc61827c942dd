// Package http assembles the Gin router and owns the API server lifecycle.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	attendeesHTTP "github.com/allisson/ticketbox/internal/attendees/http"
	authHTTP "github.com/allisson/ticketbox/internal/auth/http"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
	"github.com/allisson/ticketbox/internal/config"
	eventsHTTP "github.com/allisson/ticketbox/internal/events/http"
	"github.com/allisson/ticketbox/internal/metrics"
	paymentsHTTP "github.com/allisson/ticketbox/internal/payments/http"
)

// Handlers groups the domain handlers the router mounts.
type Handlers struct {
	Auth      *authHTTP.AuthHandler
	Events    *eventsHTTP.EventHandler
	Attendees *attendeesHTTP.AttendeeHandler
	Payments  *paymentsHTTP.PaymentHandler
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer builds the router and wraps it in an http.Server with sane
// timeouts. Public routes carry the rate limiter; admin routes carry the
// session middleware instead.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	handlers Handlers,
	authUseCase authUsecase.AuthUseCase,
	metricsProvider *metrics.Provider,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	public := router.Group("/v1")
	if cfg.RateLimitEnabled {
		public.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst))
	}
	public.GET("/events", handlers.Events.ListHandler)
	public.GET("/events/:id", handlers.Events.GetHandler)
	public.POST("/checkout", handlers.Payments.CheckoutHandler)
	public.POST("/checkout/complete", handlers.Payments.CompleteHandler)
	public.POST("/payments/webhook", handlers.Payments.WebhookHandler)
	public.GET("/tickets/:token", handlers.Attendees.TicketLookupHandler)
	public.POST("/admin/login", handlers.Auth.LoginHandler)

	admin := router.Group("/v1/admin")
	admin.Use(authHTTP.SessionMiddleware(authUseCase, logger))
	admin.POST("/logout", handlers.Auth.LogoutHandler)
	admin.POST("/events", handlers.Events.CreateHandler)
	admin.PUT("/events/:id", handlers.Events.UpdateHandler)
	admin.DELETE("/events/:id", handlers.Events.DeactivateHandler)
	admin.GET("/events/:id/attendees", handlers.Attendees.ListHandler)
	admin.PUT("/attendees/:id/flags", handlers.Attendees.FlagsHandler)

	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
