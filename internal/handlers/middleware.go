package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"caregame/internal/models"
	"caregame/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	CaregiverContextKey ContextKey = "caregiver"
)

// Authenticator resolves a bearer token to a caregiver
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Caregiver, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth Authenticator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth Authenticator) *Middleware {
	return &Middleware{auth: auth}
}

// RequireCaregiver rejects requests without a valid token. The token is read
// from the Authorization header, or from the token query parameter for
// websocket clients that cannot set headers.
func (m *Middleware) RequireCaregiver(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		caregiver, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			respondWithServiceError(w, "Failed to authenticate", err)
			return
		}

		ctx := context.WithValue(r.Context(), CaregiverContextKey, caregiver)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// GetCaregiverFromContext retrieves the caregiver from the request context
func GetCaregiverFromContext(ctx context.Context) *models.Caregiver {
	caregiver, ok := ctx.Value(CaregiverContextKey).(*models.Caregiver)
	if !ok {
		return nil
	}
	return caregiver
}
