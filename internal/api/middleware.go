package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nestflow/internal/metrics"
	"nestflow/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

const requestIDHeader = "X-Request-ID"

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// requestIDMiddleware reuses a client supplied id or issues a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// loggingMiddleware logs each request and counts it by matched route.
func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(route, recorder.status)

		event := logger.Info()
		if recorder.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Str("remote", clientKey(r)).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

// recoverMiddleware turns a handler panic into a 500.
func recoverMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Interface("panic", rec).
					Str("request_id", requestIDFrom(r.Context())).
					Str("path", r.URL.Path).
					Msg("Handler panic")
				writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser)

// requireAuth: no bearer token is 401, a token that does not verify is 403.
func (s *HTTPServer) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		user, err := s.users.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusForbidden, codeInvalidToken, "invalid or expired token")
			return
		}

		next(w, r, user)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
