package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/metrics"
)

// NewInstrumentedService wraps a settlement service with operation counters
// and latency histograms. A nil collector returns the inner service untouched.
func NewInstrumentedService(inner Service, collector *metrics.SettlementMetrics) Service {
	if collector == nil {
		return inner
	}
	return &instrumented{inner: inner, collector: collector}
}

type instrumented struct {
	inner     Service
	collector *metrics.SettlementMetrics
}

func (i *instrumented) observe(operation string, start time.Time, err error) {
	i.collector.Observe(operation, err, time.Since(start))
}

func (i *instrumented) Deposit(ctx context.Context, params CashParams) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Deposit(ctx, params)
	i.observe("deposit", start, err)
	return txn, err
}

func (i *instrumented) Withdraw(ctx context.Context, params CashParams) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Withdraw(ctx, params)
	i.observe("withdraw", start, err)
	return txn, err
}

func (i *instrumented) BuyGold(ctx context.Context, params TradeParams) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.BuyGold(ctx, params)
	i.observe("buy_gold", start, err)
	return txn, err
}

func (i *instrumented) SellGold(ctx context.Context, params TradeParams) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.SellGold(ctx, params)
	i.observe("sell_gold", start, err)
	return txn, err
}

func (i *instrumented) RequestDelivery(ctx context.Context, params DeliveryParams) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.RequestDelivery(ctx, params)
	i.observe("request_delivery", start, err)
	return txn, err
}

func (i *instrumented) MarkProcessing(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.MarkProcessing(ctx, transactionID, review)
	i.observe("mark_processing", start, err)
	return txn, err
}

func (i *instrumented) Approve(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Approve(ctx, transactionID, review)
	i.observe("approve", start, err)
	return txn, err
}

func (i *instrumented) Reject(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Reject(ctx, transactionID, review)
	i.observe("reject", start, err)
	return txn, err
}

func (i *instrumented) Cancel(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Cancel(ctx, transactionID, review)
	i.observe("cancel", start, err)
	return txn, err
}

func (i *instrumented) Refund(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	start := time.Now()
	txn, err := i.inner.Refund(ctx, transactionID, review)
	i.observe("refund", start, err)
	return txn, err
}
