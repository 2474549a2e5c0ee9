package domain

import "context"

// Notifier delivers settlement emails. Called only after a commit; a delivery
// failure is logged by the caller and never unwinds the settlement.
type Notifier interface {
	// TransactionPending notifies the user and alerts the admin that a new
	// transaction awaits approval
	TransactionPending(ctx context.Context, t *Transaction) error

	// TransactionSettled notifies the user of a terminal status. user may be
	// nil when the settlement did not touch a single user (trades).
	TransactionSettled(ctx context.Context, t *Transaction, user *User) error

	// StalePending alerts the admin about transactions pending for too long
	StalePending(ctx context.Context, ts []*Transaction) error
}

// AuditSink receives settlement outcomes for the activity trail. Record is
// fire-and-forget from the caller's perspective; persistence failures are
// handled (logged) inside the sink.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}
