package domain

import "errors"

// Error taxonomy shared by the transfer engine and its adapters.
// Callers classify failures with errors.Is; concrete reasons are carried
// by wrapping the sentinel with fmt.Errorf and %w.
var (
	// ErrInvalidTransaction covers same-account transfers, non-positive
	// amounts and references to accounts that do not exist. Never worth
	// retrying; the caller must correct the input.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInsufficientFunds means the source balance was below the
	// requested amount at the time of the atomic check. Both balances
	// are guaranteed unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound is returned by storage reads for a missing or
	// inactive account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStorageFailure means the underlying storage transaction could
	// not commit. No partial write is visible after rollback; the caller
	// may retry.
	ErrStorageFailure = errors.New("storage failure")
)
