// Package render writes JSON bodies and AppError responses for the API.
package render

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nutriplan/core/pkg/errors"
	"go.uber.org/zap"
)

// JSON writes data with the given status
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// Error renders err as an ErrorResponse. Errors that are not AppErrors are
// reported as internal errors and logged.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := errors.Wrap(err, "")
	requestID := chimiddleware.GetReqID(r.Context())

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	JSON(w, status, errors.ToErrorResponse(appErr, requestID))
}
