package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// TransactionCreatedEvent signals a new journal entry awaiting settlement.
type TransactionCreatedEvent struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	AccountID     uuid.UUID               `json:"account_id"`
	Type          enums.TransactionType   `json:"type"`
	Status        enums.TransactionStatus `json:"status"`
	Currency      enums.Asset             `json:"currency"`
	Amount        decimal.Decimal         `json:"amount"`
	Fee           decimal.Decimal         `json:"fee"`
	Grams         decimal.Decimal         `json:"grams"`
}

// TransactionSettledEvent is emitted when an entry reaches completed and the
// balance mutation has been committed.
type TransactionSettledEvent struct {
	TransactionID uuid.UUID             `json:"transaction_id"`
	AccountID     uuid.UUID             `json:"account_id"`
	Type          enums.TransactionType `json:"type"`
	Currency      enums.Asset           `json:"currency"`
	Amount        decimal.Decimal       `json:"amount"`
	Fee           decimal.Decimal       `json:"fee"`
	Grams         decimal.Decimal       `json:"grams"`
	PricePerGram  decimal.Decimal       `json:"price_per_gram,omitempty"`
	CompletedAt   time.Time             `json:"completed_at"`
}

// TransactionFailedEvent reports a rejected or failed settlement.
type TransactionFailedEvent struct {
	TransactionID uuid.UUID             `json:"transaction_id"`
	AccountID     uuid.UUID             `json:"account_id"`
	Type          enums.TransactionType `json:"type"`
	Reason        string                `json:"reason,omitempty"`
}

// TransactionCancelledEvent is emitted when a pending entry is withdrawn.
type TransactionCancelledEvent struct {
	TransactionID uuid.UUID             `json:"transaction_id"`
	AccountID     uuid.UUID             `json:"account_id"`
	Type          enums.TransactionType `json:"type"`
	CancelledAt   time.Time             `json:"cancelled_at"`
	Reason        string                `json:"reason,omitempty"`
}

// TransactionRefundedEvent carries both sides of a reversal.
type TransactionRefundedEvent struct {
	OriginalTransactionID uuid.UUID       `json:"original_transaction_id"`
	RefundTransactionID   uuid.UUID       `json:"refund_transaction_id"`
	AccountID             uuid.UUID       `json:"account_id"`
	Currency              enums.Asset     `json:"currency"`
	Amount                decimal.Decimal `json:"amount"`
	Grams                 decimal.Decimal `json:"grams"`
	RefundedAt            time.Time       `json:"refunded_at"`
}

// TransactionFlaggedEvent tells compliance tooling an entry needs review.
type TransactionFlaggedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Flagged       bool      `json:"flagged"`
	Notes         string    `json:"notes,omitempty"`
}

// AccountDeactivatedEvent announces that an account can no longer transact.
type AccountDeactivatedEvent struct {
	AccountID     uuid.UUID `json:"account_id"`
	UserID        uuid.UUID `json:"user_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}
