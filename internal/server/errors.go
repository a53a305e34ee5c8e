// Package server provides the HTTP REST API for the interview engine.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-engine/internal/arms"
	"github.com/jonathan/interview-engine/internal/evaluate"
	"github.com/jonathan/interview-engine/internal/report"
	"github.com/jonathan/interview-engine/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation     *ErrValidation
		notFound       *session.NotFoundError
		armNotFound    *arms.NotFoundError
		invalidState   *session.InvalidStateError
		reportNotReady *report.InvalidStateError
		aborted        *session.AbortedError
		unavailable    *evaluate.EvaluationUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &armNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalidState), errors.As(err, &reportNotReady):
		return http.StatusConflict
	case errors.As(err, &aborted), errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
