package domain

import "errors"

// Error taxonomy for the generation pipeline. Every failure crossing the
// service boundary wraps one of these sentinels so the transport layer can
// pick a status code without string matching.
var (
	// ErrValidation covers missing required fields in a request.
	ErrValidation = errors.New("validation error")

	// ErrUnknownModel is returned when a request names a model that is not
	// in the directory. No subprocess is spawned.
	ErrUnknownModel = errors.New("unknown model")

	// ErrTokenBudget is returned when the estimated token count exceeds the
	// model's maximum, before any external call.
	ErrTokenBudget = errors.New("token budget exceeded")

	// ErrExecNotFound means the generation executable is missing from all
	// known install locations. Fatal for the request, not the process.
	ErrExecNotFound = errors.New("generation executable not found")

	// ErrGenerationTimeout means the subprocess exceeded its wall-clock bound.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationFailed means the subprocess exited non-zero.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyResponse means extraction produced no usable text even though
	// the subprocess exited cleanly.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrStoreUnavailable means the key-attribute store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound covers missing entities (users, sessions).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists covers entity creation conflicts.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized covers bad credentials and invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the access policy denied the action.
	ErrForbidden = errors.New("forbidden")
)
