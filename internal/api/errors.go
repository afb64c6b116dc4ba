package api

import (
	"errors"
	"net/http"

	"crmsync/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var configuration *domain.ConfigurationError
	var auth *domain.AuthError
	var query *domain.QueryError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &configuration):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusBadGateway
	case errors.As(err, &query):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
