package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go-product-insight/internal/session"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// TokenVerifier is implemented by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Authenticate resolves the user from a Firebase ID token. Requests without a token
// continue anonymously; an invalid token is rejected.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			idToken, ok := strings.CutPrefix(header, "Bearer ")
			idToken = strings.TrimSpace(idToken)
			if !ok || idToken == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			token, err := verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				log.Debug().Err(err).Msg("rejected id token")
				writeError(w, http.StatusUnauthorized, "invalid id token")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), token.UID)))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Int64("bytes", wrapped.written).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
