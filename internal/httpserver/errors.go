package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/handler/reviewsummary"

	"github.com/rs/zerolog/log"
)

// statusError pins the response status of an error for one route.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }

func (e *statusError) Unwrap() error { return e.err }

func withStatus(status int, err error) error {
	return &statusError{status: status, err: err}
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}

	if errors.Is(err, ierr.ErrNoPartition) {
		return http.StatusUnauthorized
	}
	if ierr.IsNotFound(err) {
		return http.StatusNotFound
	}
	if errors.Is(err, reviewsummary.ErrNoReviews) {
		return http.StatusBadRequest
	}

	var limitErr *ierr.LimitExceeded
	if errors.As(err, &limitErr) {
		return http.StatusRequestEntityTooLarge
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch ierr.KindOf(err) {
	case ierr.KindInvalidRequest:
		return http.StatusBadRequest
	case ierr.KindRateLimit:
		return http.StatusTooManyRequests
	case ierr.KindTimeout:
		return http.StatusGatewayTimeout
	case ierr.KindAuth, ierr.KindTransport, ierr.KindInvalidResponse:
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
