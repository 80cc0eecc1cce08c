package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"qcm-challenge/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	payload := errorPayload{Message: err.Error()}
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		payload.Field = validation.Field
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		payload.Message = "internal error"
	}
	writeJSON(w, status, map[string]errorPayload{"error": payload})
}

func statusFor(err error) int {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrOptionOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionStarted),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrPoleExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid("", "invalid request body")
	}
	return nil
}

func indexParam(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, domain.Invalid("index", "index must be an integer")
	}
	return idx, nil
}
