package services

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrWeakPassword         = errors.New("weak password")
	ErrPasswordUnchanged    = errors.New("new password must differ")
	ErrDateInFuture         = errors.New("date must not be in the future")
	ErrCycleLengthRange     = errors.New("cycle length out of range")
	ErrCycleEndBeforeStart  = errors.New("cycle end must not precede its start")
	ErrCycleExists          = errors.New("cycle already logged for that start date")
	ErrCycleAlreadyEnded    = errors.New("cycle has already ended")
	ErrNoLastPeriod         = errors.New("last period date is not set")
	ErrInsightsUnavailable  = errors.New("health insights are not configured")
	ErrInsightsRateLimited  = errors.New("health insights rate limit exceeded")
	ErrInsightsOutOfCredits = errors.New("health insights credits exhausted")
)
