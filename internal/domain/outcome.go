package domain

// OutcomeStatus enumerates the possible results of a single LEI lookup.
type OutcomeStatus string

const (
	// StatusResolved means the registry returned entity data.
	StatusResolved OutcomeStatus = "resolved"
	// StatusNotFound means the registry has no record for the LEI.
	StatusNotFound OutcomeStatus = "not_found"
	// StatusTransient means the lookup failed in a way that may succeed
	// on retry (network error, timeout, 5xx).
	StatusTransient OutcomeStatus = "transient_failure"
	// StatusPermanent means retrying is futile (malformed LEI, malformed
	// or unexpected response payload).
	StatusPermanent OutcomeStatus = "permanent_failure"
)

// Outcome is the tagged result of one lookup attempt. Callers switch on
// Status; Entity is meaningful only for StatusResolved, Err only for the
// two failure statuses.
type Outcome struct {
	Status OutcomeStatus
	Entity Entity
	Err    error
}

// Resolved wraps entity data in a successful outcome.
func Resolved(e Entity) Outcome {
	return Outcome{Status: StatusResolved, Entity: e}
}

// NotFound marks an LEI the registry knows nothing about.
func NotFound() Outcome {
	return Outcome{Status: StatusNotFound}
}

// Transient marks a retryable failure.
func Transient(err error) Outcome {
	return Outcome{Status: StatusTransient, Err: err}
}

// Permanent marks a failure that must not be retried.
func Permanent(err error) Outcome {
	return Outcome{Status: StatusPermanent, Err: err}
}
