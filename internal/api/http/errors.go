package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/logger"
)

var kindStatus = map[string]int{
	domain.KindValidation:             http.StatusBadRequest,
	domain.KindNotFound:               http.StatusNotFound,
	domain.KindAuthorization:          http.StatusForbidden,
	domain.KindIllegalTransition:      http.StatusConflict,
	domain.KindAlreadyRated:           http.StatusConflict,
	domain.KindConcurrentModification: http.StatusConflict,
	domain.KindInvalidState:           http.StatusUnprocessableEntity,
	domain.KindUnavailable:            http.StatusServiceUnavailable,
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps a domain error kind onto its HTTP status.
func StatusFor(kind string) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.ErrorKind(err)
	status := StatusFor(kind)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		msg = "internal error"
	} else if status == http.StatusConflict || status == http.StatusServiceUnavailable {
		logger.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "error", err)
	} else {
		logger.DebugContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	kind := domain.KindAuthorization
	if status == http.StatusUnauthorized {
		kind = "unauthenticated"
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
	}
	return nil
}
