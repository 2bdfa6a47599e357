package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fwojciec/bookhaven"
)

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   errorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type errorResponseBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []fieldError `json:"details,omitempty"`
}

func requestMeta(r *http.Request) any {
	id := RequestIDFrom(r.Context())
	if id == "" {
		return nil
	}
	return map[string]string{"request_id": id}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successResponse{
		Success: true,
		Data:    data,
		Meta:    requestMeta(r),
	})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: requestMeta(r),
	})
}

// errorStatus maps application error codes to HTTP status codes.
func errorStatus(code string) int {
	switch code {
	case bookhaven.EINVALID:
		return http.StatusBadRequest
	case bookhaven.ENOTFOUND:
		return http.StatusNotFound
	case bookhaven.ECONFLICT:
		return http.StatusConflict
	case bookhaven.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error response. Internal errors are logged and
// reported without detail.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := bookhaven.ErrorCode(err), bookhaven.ErrorMessage(err)
	if code == bookhaven.EINTERNAL {
		s.logger().ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.Any("error", err))
	}
	writeJSONError(w, r, errorStatus(code), code, message, nil)
}
