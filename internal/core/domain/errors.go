package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Model-provider errors. All three are absorbed by the orchestrator's
	// fallback chain and never reach a caller.

	// ErrQuotaExceeded indicates the provider rejected the call for quota
	// or rate-limit reasons.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrTransientFailure indicates a temporary provider or network failure.
	ErrTransientFailure = errors.New("transient provider failure")

	// ErrMalformedResponse indicates the model returned output that could
	// not be parsed into the expected shape. Treated the same as a provider
	// failure.
	ErrMalformedResponse = errors.New("malformed model response")

	// Persistence errors. These are surfaced to callers as retryable
	// because silently dropping a write would corrupt the graph's
	// completeness guarantee.

	// ErrStoreUnavailable indicates both graph transports failed.
	ErrStoreUnavailable = errors.New("graph store unavailable")
)

// IsProviderFailure reports whether err belongs to the model-provider error
// taxonomy that triggers fallback to the next candidate.
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrTransientFailure) ||
		errors.Is(err, ErrMalformedResponse)
}
