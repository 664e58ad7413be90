package contest

import "errors"

// Validation errors surfaced synchronously to callers. Judging failures are
// never represented here: they terminate inside the async task as a
// runtime_error verdict.
var (
	ErrContestNotFound     = errors.New("contest not found")
	ErrContestNotActive    = errors.New("contest is not active")
	ErrContestImmutable    = errors.New("contest can no longer be modified")
	ErrRegistrationClosed  = errors.New("registration is closed")
	ErrAlreadyRegistered   = errors.New("already registered for contest")
	ErrContestFull         = errors.New("contest has reached its participant limit")
	ErrNotRegistered       = errors.New("not registered for contest")
	ErrProblemNotInContest = errors.New("problem is not part of contest")
	ErrUnauthorized        = errors.New("operation not permitted")

	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidTimeWindow  = errors.New("contest start must be before end")
)
