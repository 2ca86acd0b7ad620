package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
)

// TxRunner executes a function inside one database transaction. Satisfied by
// db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PriceQuoter supplies the current gold price per gram in a currency. The
// implementation rejects stale quotes so instant trades never execute on
// dead market data.
type PriceQuoter interface {
	Latest(ctx context.Context, currency enums.Asset) (*models.PriceSnapshot, error)
}

// Events queues domain events transactionally alongside settlement writes.
type Events interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives every journal write: creating entries, instant gold trades,
// and the review transitions that settle or unwind them.
type Service interface {
	Deposit(ctx context.Context, params CashParams) (*models.Transaction, error)
	Withdraw(ctx context.Context, params CashParams) (*models.Transaction, error)
	BuyGold(ctx context.Context, params TradeParams) (*models.Transaction, error)
	SellGold(ctx context.Context, params TradeParams) (*models.Transaction, error)
	RequestDelivery(ctx context.Context, params DeliveryParams) (*models.Transaction, error)

	MarkProcessing(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error)
	Approve(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error)
	Reject(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error)
	Cancel(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error)
	Refund(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error)
}

// CashParams creates a deposit or withdrawal request.
type CashParams struct {
	AccountID uuid.UUID
	CreatedBy uuid.UUID
	Currency  enums.Asset
	Amount    decimal.Decimal
}

// TradeParams creates an instant gold purchase or sale, priced at the
// latest snapshot.
type TradeParams struct {
	AccountID uuid.UUID
	CreatedBy uuid.UUID
	Currency  enums.Asset
	Grams     decimal.Decimal
}

// DeliveryParams requests physical delivery of held gold.
type DeliveryParams struct {
	AccountID uuid.UUID
	CreatedBy uuid.UUID
	Currency  enums.Asset
	Grams     decimal.Decimal
}

// Review carries the reviewing actor and their stated reason. Staff reviews
// also produce an audit record in the same transaction; owner-initiated
// cancellations pass the customer role and skip the audit trail.
type Review struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	Reason    string
}
