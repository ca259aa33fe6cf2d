// Package render holds the response helpers shared by the API handlers.
package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/aggregate"
	"github.com/MrJamesThe3rd/stoptracker/internal/backup"
	"github.com/MrJamesThe3rd/stoptracker/internal/expense"
	"github.com/MrJamesThe3rd/stoptracker/internal/importer"
	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
	"github.com/MrJamesThe3rd/stoptracker/internal/storage"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

var badRequest = []error{
	workday.ErrMissingStops,
	workday.ErrInvalidStops,
	workday.ErrInvalidExtra,
	expense.ErrMissingCategory,
	expense.ErrMissingAmount,
	expense.ErrInvalidAmount,
	rate.ErrInvalidConfig,
	backup.ErrInvalidSnapshot,
	importer.ErrUnknownFormat,
	aggregate.ErrUnknownPeriod,
}

var notFound = []error{
	workday.ErrNotFound,
	expense.ErrNotFound,
	storage.ErrNotFound,
}

// Status maps a service error to the HTTP status it is reported with.
func Status(err error) int {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}

	if errors.Is(err, storage.ErrRemote) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

// Error writes err as JSON. Internal failures are logged and their detail is
// not sent to the client.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := Status(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
		msg = http.StatusText(status)
	}

	JSON(w, logger, status, errorResponse{Error: msg})
}

func JSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
