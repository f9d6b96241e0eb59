package apperrors

import "errors"

// ErrNotFound indicates that a requested account could not be found.
var ErrNotFound = errors.New("account not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create an account with an ID that already exists.
var ErrDuplicate = errors.New("account already exists")

// ErrAccountDeleted indicates that the referenced account exists but has been soft-deleted.
// Transfer wraps it with the failing side (sender or receiver).
var ErrAccountDeleted = errors.New("account is deleted")

// ErrInsufficientFunds indicates a withdrawal or transfer exceeding the available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrCorruptStore indicates that a persisted account file exists but could not be parsed.
var ErrCorruptStore = errors.New("account store file is corrupt")

// ErrPersistenceFailed indicates that a mutation was applied in memory but could not
// be durably written. It must be surfaced distinctly, never swallowed into a success.
var ErrPersistenceFailed = errors.New("failed to persist account store")
