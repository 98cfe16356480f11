package shared

import "errors"

var (
	// ErrInvalidArgument indicates malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientStock indicates a feasibility check failed against current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique key is already taken.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrReferenced indicates a delete blocked by rows still referencing the record.
	ErrReferenced = errors.New("record is still referenced")
	// ErrRetryable indicates a transaction conflict that persisted across retries.
	ErrRetryable = errors.New("transaction conflict, retry later")
	// ErrConflict indicates an unexpected store failure.
	ErrConflict = errors.New("store conflict")
)
