package httputil

import (
	"encoding/json"
	"log"
	"net/http"

	"conduit/internal/model"
)

// Error codes carried in the error envelope
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message. Subject and Violation are
// set for domain errors.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Subject   string `json:"subject,omitempty"`
	Violation string `json:"violation,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] WriteJSON: encode failed: %v", err)
		}
	}
}

// StatusFor maps every DomainError kind to its transport status.
func StatusFor(kind model.ErrorKind) (int, string) {
	switch kind {
	case model.KindInvalidRequest:
		return http.StatusUnprocessableEntity, ErrCodeInvalidRequest
	case model.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case model.KindPermissionDenied:
		return http.StatusForbidden, ErrCodePermissionDenied
	case model.KindUnauthenticated:
		return http.StatusUnauthorized, ErrCodeUnauthenticated
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// WriteDomainError writes err with the status of its kind.
func WriteDomainError(w http.ResponseWriter, err *model.DomainError) {
	status, code := StatusFor(err.Kind)
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   err.Error(),
			Subject:   err.Subject,
			Violation: err.Violation,
		},
	})
}

// WriteServiceError writes a domain error as-is and anything else as a
// logged 500 that does not leak the cause.
func WriteServiceError(w http.ResponseWriter, op string, err error) {
	if de, ok := model.AsDomainError(err); ok {
		WriteDomainError(w, de)
		return
	}
	log.Printf("[ERROR] %s: %v", op, err)
	WriteInternalError(w, "Internal server error")
}

// WriteInvalidBody writes the error for a request body that is not valid JSON.
func WriteInvalidBody(w http.ResponseWriter) {
	WriteDomainError(w, model.InvalidRequest("Body", "malformed JSON"))
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{Code: ErrCodeInternal, Message: message},
	})
}
