package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/attaboy/fairway/internal/domain"
)

// ErrorBody is the JSON shape of every error response. Retryable marks
// failures the client may resubmit unchanged.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError anywhere
// in the chain for status codes.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		RespondJSON(w, appErr.Status, ErrorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Transient(),
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, ErrorBody{
		Code:    domain.CodeInternal,
		Message: "internal server error",
	})
}

// maxBodyBytes caps request bodies. A full group setup is a few KiB.
const maxBodyBytes = 1 << 20

// DecodeJSON reads and decodes a JSON request body into dst, rejecting
// unknown fields and bodies over 1 MiB.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
