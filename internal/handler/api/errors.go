package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"GridCast/internal/domain/models"
	"GridCast/internal/usecase"
	xhttp "GridCast/pkg/http"
)

// parseWindow parses start/end query values (RFC3339 or unix seconds) into a
// valid time window.
func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	start, ok := xhttp.ParseTime(startStr)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q", startStr)
	}
	end, ok := xhttp.ParseTime(endStr)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q", endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end before start")
	}
	return start, end, nil
}

// statusFor maps domain errors to HTTP statuses for the plain handlers.
func statusFor(err error) int {
	var insufficient *models.InsufficientDataError
	var noData *models.NoDataError
	switch {
	case errors.Is(err, usecase.ErrModelNotFound):
		return http.StatusNotFound
	case errors.As(err, &noData):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// appErrorFor maps domain errors to AppError for the Echo handlers.
func appErrorFor(err error) *xhttp.AppError {
	var insufficient *models.InsufficientDataError
	var noData *models.NoDataError
	switch {
	case errors.Is(err, usecase.ErrModelNotFound):
		return xhttp.NotFoundError("correction model not found").WithError(err)
	case errors.As(err, &noData):
		return xhttp.NotFoundError(noData.Error()).WithError(err)
	case errors.As(err, &insufficient):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", insufficient.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
