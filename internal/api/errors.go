package api

import (
	"errors"
	"net/http"

	"tablecheck/internal/domain"
)

// httpStatus maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500.
func httpStatus(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var denied *domain.AccessDeniedError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
