package session

import "errors"

var (
	// ErrPersonaNotFound aborts session creation; it is never a turn failure.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrSessionNotFound is returned for lookups of destroyed or unknown sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScenarioNotFound is returned when selecting a scenario the persona
	// does not offer.
	ErrScenarioNotFound = errors.New("scenario not found")
)
