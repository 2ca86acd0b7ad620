package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// Transaction is a journal entry: one balance-affecting event and its full
// settlement lifecycle. Rows are immutable once a terminal status is reached
// (completed may still flip to refunded exactly once) and are never deleted.
type Transaction struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID               `gorm:"column:account_id;type:uuid;not null;index"`
	Type      enums.TransactionType   `gorm:"column:type;type:transaction_type_enum;not null"`
	Status    enums.TransactionStatus `gorm:"column:status;type:transaction_status_enum;not null;default:'pending'"`

	// Amount is the requested cash amount in Currency. Fee is charged on top
	// for debits and deducted for credits; NetAmount is the signed-free
	// convenience value the ledger legs derive from.
	Currency  enums.Asset     `gorm:"column:currency;type:text;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(20,6);not null"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(20,6);not null"`
	NetAmount decimal.Decimal `gorm:"column:net_amount;type:numeric(20,6);not null"`

	// Gold trade fields. Grams is zero for pure cash operations.
	Grams           decimal.Decimal `gorm:"column:grams;type:numeric(20,6);not null"`
	PricePerGram    decimal.Decimal `gorm:"column:price_per_gram;type:numeric(20,6);not null"`
	PriceSnapshotID *uuid.UUID      `gorm:"column:price_snapshot_id;type:uuid"`

	// Refunds point back at the entry they reverse.
	OriginalTransactionID *uuid.UUID `gorm:"column:original_transaction_id;type:uuid"`

	Flagged       bool    `gorm:"column:flagged;not null;default:false"`
	FailureReason *string `gorm:"column:failure_reason"`
	ReviewNotes   *string `gorm:"column:review_notes"`

	CreatedBy  uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	ReviewedBy *uuid.UUID `gorm:"column:reviewed_by;type:uuid"`

	ProcessingAt *time.Time `gorm:"column:processing_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	FailedAt     *time.Time `gorm:"column:failed_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	RefundedAt   *time.Time `gorm:"column:refunded_at"`

	// AppliedAt marks the moment the ledger engine mutated balances for this
	// entry; it is the double-apply guard.
	AppliedAt  *time.Time `gorm:"column:applied_at"`
	ReversedAt *time.Time `gorm:"column:reversed_at"`

	Metadata  json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
