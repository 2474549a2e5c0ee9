package domain

import "errors"

// Error taxonomy for settlement operations. All of these abort the enclosing
// ledger transaction; none of them is fatal to the process.
var (
	// ErrNotFound means a referenced transaction, user or trader id does not resolve
	ErrNotFound = errors.New("not found")

	// ErrAlreadySettled means the transaction is no longer pending; safe to
	// surface on retries, the balance was applied exactly once
	ErrAlreadySettled = errors.New("transaction already settled")

	// ErrInsufficientFunds means a withdrawal exceeds deposit + interest
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification means the ledger transaction lost a conflict;
	// the caller should retry the whole operation from scratch
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrDataIntegrityGap means a user references a trader that no longer
	// exists; logged and skipped, non-fatal to a disbursement pass
	ErrDataIntegrityGap = errors.New("data integrity gap")

	// ErrPendingExists means the user already has a pending transaction of the
	// same type awaiting approval
	ErrPendingExists = errors.New("pending transaction awaiting approval")
)
