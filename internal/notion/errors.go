package notion

import "errors"

// Store error taxonomy. Transport failures and rejected requests are
// distinguished so callers can tell "could not reach the store" from
// "the store refused the request".
var (
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrStoreRejected    = errors.New("record store rejected request")
)
