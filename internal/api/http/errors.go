package http

import (
	"errors"
	"net/http"

	"github.com/pacewise/pacewise-progress/internal/assessment"
	"github.com/pacewise/pacewise-progress/internal/oracle"
	"github.com/pacewise/pacewise-progress/internal/progress"
)

// writeError maps domain errors onto HTTP statuses: caller mistakes are 4xx,
// upstream and store failures are 5xx.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, progress.ErrSequenceViolation):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, progress.ErrProgressNotFound),
		errors.Is(err, assessment.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, progress.ErrEmptyTree),
		errors.Is(err, assessment.ErrAttemptClosed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, oracle.ErrUpstream):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
