package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"nebulines/service"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, errorResponse{Error: message})
}

// statusForError maps service failures onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidEvent), errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEventClosed),
		errors.Is(err, service.ErrEventStillOpen),
		errors.Is(err, service.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrNotAMember), errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrLeagueNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStoreTransactionFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":  r.URL.Path,
			"error": err,
		}).Error("Request failed")
		respondWithError(w, status, "Internal server error")
		return
	}
	respondWithJSON(w, status, errorResponse{Error: err.Error(), Retryable: service.IsRetryable(err)})
}
