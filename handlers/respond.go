package handlers

import (
	"darshan-system/internal/status"

	"github.com/pocketbase/pocketbase/apis"
)

// apiError maps a service error to an HTTP error with a stable status
// code per error kind.
func apiError(err error) error {
	switch status.KindOf(err) {
	case status.KindValidation:
		return apis.NewBadRequestError(err.Error(), err)
	case status.KindNotFound:
		return apis.NewNotFoundError(err.Error(), err)
	case status.KindConflict:
		return apis.NewApiError(409, err.Error(), err)
	case status.KindDependency:
		return apis.NewApiError(503, "Service temporarily unavailable", err)
	default:
		return apis.NewInternalServerError("Something went wrong", err)
	}
}
