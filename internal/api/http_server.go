package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nestflow/internal/config"
	"nestflow/internal/domain"

	"github.com/rs/zerolog"
)

// Services are the use cases the HTTP layer dispatches to.
type Services struct {
	Users        domain.UserService
	Properties   domain.PropertyService
	Reservations domain.ReservationService
	Reviews      domain.ReviewService
	Messages     domain.MessageService
	// Ready reports whether dependencies can serve traffic; nil means always ready.
	Ready func(ctx context.Context) error
}

// HTTPServer exposes the JSON API under /api.
type HTTPServer struct {
	cfg          config.APIConfig
	server       *http.Server
	users        domain.UserService
	properties   domain.PropertyService
	reservations domain.ReservationService
	reviews      domain.ReviewService
	messages     domain.MessageService
	ready        func(ctx context.Context) error
	limiter      *rateLimiter
	logger       *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:          cfg,
		users:        svc.Users,
		properties:   svc.Properties,
		reservations: svc.Reservations,
		reviews:      svc.Reviews,
		messages:     svc.Messages,
		ready:        svc.Ready,
		limiter:      newRateLimiter(cfg.RateLimit),
		logger:       logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := requestIDMiddleware(
		loggingMiddleware(logger,
			recoverMiddleware(logger,
				srv.limiter.Wrap(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("PUT /api/auth/profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/auth/profile/avatar", s.requireAuth(s.handleUpdateAvatar))

	mux.HandleFunc("GET /api/properties", s.handleListProperties)
	mux.HandleFunc("POST /api/properties", s.requireAuth(s.handleCreateProperty))
	mux.HandleFunc("GET /api/properties/host/stats", s.requireAuth(s.handleHostStats))
	mux.HandleFunc("GET /api/properties/{id}", s.handleGetProperty)
	mux.HandleFunc("PUT /api/properties/{id}", s.requireAuth(s.handleUpdateProperty))
	mux.HandleFunc("DELETE /api/properties/{id}", s.requireAuth(s.handleDeleteProperty))
	mux.HandleFunc("GET /api/properties/{id}/availability", s.handleAvailability)
	mux.HandleFunc("POST /api/properties/{id}/images", s.requireAuth(s.handleAddImages))
	mux.HandleFunc("DELETE /api/properties/image/{imageId}", s.requireAuth(s.handleDeleteImage))

	mux.HandleFunc("POST /api/reservations", s.requireAuth(s.handleCreateReservation))
	mux.HandleFunc("GET /api/reservations/my-trips", s.requireAuth(s.handleMyTrips))
	mux.HandleFunc("GET /api/reservations/manage", s.requireAuth(s.handleHostReservations))
	mux.HandleFunc("GET /api/reservations/manage/export", s.requireAuth(s.handleExportReservations))
	mux.HandleFunc("PUT /api/reservations/{id}/status", s.requireAuth(s.handleUpdateStatus))

	mux.HandleFunc("POST /api/reviews", s.requireAuth(s.handleCreateReview))
	mux.HandleFunc("GET /api/reviews/{propertyId}", s.handleListReviews)

	mux.HandleFunc("POST /api/messages", s.requireAuth(s.handleSendMessage))
	mux.HandleFunc("GET /api/messages/inbox", s.requireAuth(s.handleInbox))
	mux.HandleFunc("GET /api/messages/{propertyId}/{contactId}", s.requireAuth(s.handleChat))
	mux.HandleFunc("PUT /api/messages/read/{propertyId}/{contactId}", s.requireAuth(s.handleMarkRead))
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
