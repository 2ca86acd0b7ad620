package settlement

import (
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

// transitions declares the settlement state machine. Completed is the only
// terminal-ish state with an exit: a single refund.
var transitions = map[enums.TransactionStatus][]enums.TransactionStatus{
	enums.TransactionStatusPending: {
		enums.TransactionStatusProcessing,
		enums.TransactionStatusCompleted,
		enums.TransactionStatusFailed,
		enums.TransactionStatusCancelled,
	},
	enums.TransactionStatusProcessing: {
		enums.TransactionStatusCompleted,
		enums.TransactionStatusFailed,
		enums.TransactionStatusCancelled,
	},
	enums.TransactionStatusCompleted: {
		enums.TransactionStatusRefunded,
	},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to enums.TransactionStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a state-conflict error when from -> to is not a
// legal settlement move.
func ValidateTransition(from, to enums.TransactionStatus) error {
	if !CanTransition(from, to) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot move transaction from %s to %s", from, to)
	}
	return nil
}

// openStatuses lists the statuses a settlement action may move an entry out
// of: everything that has not reached a terminal state yet.
var openStatuses = []enums.TransactionStatus{
	enums.TransactionStatusPending,
	enums.TransactionStatusProcessing,
}
