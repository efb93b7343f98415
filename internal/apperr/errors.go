package apperr

import "errors"

var (
	// ErrStorageUnavailable means the storage backend could not be reached.
	// It is fatal to the current run and never retried inside a store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrFetchFailed means the news source failed or timed out. The run is
	// aborted without committing progress.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDuplicateRun means an identical ledger entry already exists.
	ErrDuplicateRun = errors.New("duplicate run")

	// ErrInvalidWindow means the computed fetch window is empty.
	ErrInvalidWindow = errors.New("invalid fetch window")

	// ErrLedgerMode means a ledger operation does not match the active ledger shape.
	ErrLedgerMode = errors.New("ledger mode mismatch")

	ErrNotFound = errors.New("not found")
)

// Retryable reports whether a failed run may succeed when simply run again.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrFetchFailed)
}

// ValidationError is a caller mistake. It maps to 400 over HTTP and is
// never retried.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}
