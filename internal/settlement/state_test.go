package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to enums.TransactionStatus
	}{
		{enums.TransactionStatusPending, enums.TransactionStatusProcessing},
		{enums.TransactionStatusPending, enums.TransactionStatusCompleted},
		{enums.TransactionStatusPending, enums.TransactionStatusFailed},
		{enums.TransactionStatusPending, enums.TransactionStatusCancelled},
		{enums.TransactionStatusProcessing, enums.TransactionStatusCompleted},
		{enums.TransactionStatusProcessing, enums.TransactionStatusFailed},
		{enums.TransactionStatusProcessing, enums.TransactionStatusCancelled},
		{enums.TransactionStatusCompleted, enums.TransactionStatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to enums.TransactionStatus
	}{
		{enums.TransactionStatusProcessing, enums.TransactionStatusPending},
		{enums.TransactionStatusCompleted, enums.TransactionStatusFailed},
		{enums.TransactionStatusFailed, enums.TransactionStatusCompleted},
		{enums.TransactionStatusCancelled, enums.TransactionStatusPending},
		{enums.TransactionStatusRefunded, enums.TransactionStatusCompleted},
		{enums.TransactionStatusRefunded, enums.TransactionStatusRefunded},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestValidateTransitionErrorCode(t *testing.T) {
	err := ValidateTransition(enums.TransactionStatusFailed, enums.TransactionStatusCompleted)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeStateConflict))
	assert.NoError(t, ValidateTransition(enums.TransactionStatusPending, enums.TransactionStatusCompleted))
}
