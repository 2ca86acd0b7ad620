package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

var bpsDivisor = decimal.NewFromInt(10000)

// FeeSchedule computes per-operation fees from configured basis points.
type FeeSchedule struct {
	cfg config.FeeConfig
}

// NewFeeSchedule wraps the configured fee rates.
func NewFeeSchedule(cfg config.FeeConfig) FeeSchedule {
	return FeeSchedule{cfg: cfg}
}

// For returns the fee charged for a transaction type on the given cash
// amount, rounded to the currency's precision.
func (f FeeSchedule) For(txType enums.TransactionType, amount decimal.Decimal, currency enums.Asset) decimal.Decimal {
	var bps int
	switch txType {
	case enums.TransactionTypeDeposit:
		bps = f.cfg.DepositBps
	case enums.TransactionTypeWithdrawal:
		bps = f.cfg.WithdrawalBps
	case enums.TransactionTypeGoldPurchase:
		bps = f.cfg.GoldPurchaseBps
	case enums.TransactionTypeGoldSale:
		bps = f.cfg.GoldSaleBps
	case enums.TransactionTypePhysicalDelivery:
		bps = f.cfg.DeliveryBps
	}
	if bps <= 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(int64(bps))).Div(bpsDivisor).Round(currency.Precision())
}
