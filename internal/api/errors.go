package api

import (
	"errors"
	"net/http"

	"github.com/codearena/arena/internal/contest"
)

var (
	errAuthHeaderRequired = errors.New("authorization header is required")
	errAuthHeaderFormat   = errors.New("authorization header format must be Bearer {token}")
)

// statusFromError maps domain errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, contest.ErrContestNotFound),
		errors.Is(err, contest.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, contest.ErrAlreadyRegistered),
		errors.Is(err, contest.ErrContestFull):
		return http.StatusConflict
	case errors.Is(err, contest.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, contest.ErrContestNotActive),
		errors.Is(err, contest.ErrContestImmutable),
		errors.Is(err, contest.ErrRegistrationClosed),
		errors.Is(err, contest.ErrNotRegistered),
		errors.Is(err, contest.ErrProblemNotInContest),
		errors.Is(err, contest.ErrInvalidTimeWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
