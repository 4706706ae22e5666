package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fieldops/sopdesk/pkg/serrors"
)

// Envelope is the wire format shared with the mobile client. Every endpoint
// responds with it, success or failure.
type Envelope struct {
	StatusCode     int    `json:"statusCode"`
	IsSuccess      bool   `json:"isSuccess"`
	Result         any    `json:"result,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func Ok(w http.ResponseWriter, result any, successMessage string) {
	writeJSON(w, http.StatusOK, &Envelope{
		StatusCode:     http.StatusOK,
		IsSuccess:      true,
		Result:         result,
		SuccessMessage: successMessage,
	})
}

func Created(w http.ResponseWriter, result any, successMessage string) {
	writeJSON(w, http.StatusCreated, &Envelope{
		StatusCode:     http.StatusCreated,
		IsSuccess:      true,
		Result:         result,
		SuccessMessage: successMessage,
	})
}

// StatusOf maps an error to the HTTP status the boundary responds with.
// Conflicts surface as 400 ("already exists") to match the client contract,
// and invalid identity is forbidden rather than defaulted.
func StatusOf(err error) int {
	switch serrors.KindOf(err) {
	case serrors.KindValidation, serrors.KindConflict:
		return http.StatusBadRequest
	case serrors.KindNotFound:
		return http.StatusNotFound
	case serrors.KindUnauthorized:
		return http.StatusUnauthorized
	case serrors.KindForbidden, serrors.KindInvalidIdentity:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the envelope for err. Coded errors surface their message
// verbatim; anything else becomes a generic 500 so internals never leak.
func Error(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	message := serrors.MessageOf(err)
	if status == http.StatusInternalServerError || message == "" {
		message = "internal server error"
	}
	writeJSON(w, status, &Envelope{
		StatusCode:   status,
		IsSuccess:    false,
		ErrorMessage: message,
	})
}
