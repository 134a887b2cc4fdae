package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
)

const msgInternal = "Internal server error"

type ErrorResponse struct {
	Error      apperr.Kind        `json:"error"`
	Message    string             `json:"message"`
	StatusCode int                `json:"statusCode"`
	Timestamp  string             `json:"timestamp"`
	Path       string             `json:"path"`
	Errors     apperr.FieldErrors `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as the uniform error body. Anything that is not a typed
// caller error is logged and reported as an opaque internal failure.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	resp := ErrorResponse{
		Error:     apperr.KindOf(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Path:      r.URL.Path,
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		log.WithError(err).WithFields(logger.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		resp.Error = apperr.KindInternal
		resp.Message = msgInternal
	} else {
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
	}

	resp.StatusCode = StatusFor(resp.Error)
	JSON(w, resp.StatusCode, resp)
}
