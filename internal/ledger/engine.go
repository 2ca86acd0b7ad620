package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

// Balances maps an asset to the balance it holds after a mutation.
type Balances map[enums.Asset]decimal.Decimal

// Engine is the single choke point for balance mutations. Every leg of a
// transaction is applied inside the caller's database transaction under
// row-level locks, so an account's balances always equal the sum of its
// applied, non-reversed journal entries.
type Engine struct {
	logg *logger.Logger
}

// NewEngine builds a ledger engine.
func NewEngine(logg *logger.Logger) (*Engine, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{logg: logg}, nil
}

// Apply executes the forward balance effect of a transaction. It must run
// inside the same database transaction that moves the journal entry to
// completed; a transaction that was already applied is rejected rather than
// double-mutated.
func (e *Engine) Apply(ctx context.Context, tx *gorm.DB, txn *models.Transaction) (Balances, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger apply requires a database transaction")
	}
	if err := validateAmounts(txn); err != nil {
		return nil, err
	}

	legs, err := forwardLegs(txn)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve ledger legs")
	}

	// Claiming applied_at with a conditional update is the double-apply
	// guard; the row lock it takes also serializes racing settlements of
	// the same entry.
	now := time.Now().UTC()
	claim := tx.Model(&models.Transaction{}).
		Where("id = ? AND applied_at IS NULL", txn.ID).
		Update("applied_at", now)
	if claim.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, claim.Error, "claim transaction for apply")
	}
	if claim.RowsAffected == 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "transaction %s already applied", txn.ID)
	}
	txn.AppliedAt = &now

	return e.mutate(ctx, tx, txn.AccountID, legs)
}

// Reverse executes the exact counter-mutation of an applied transaction,
// used by refunds. Reversing an entry that was never applied, or reversing
// twice, is rejected.
func (e *Engine) Reverse(ctx context.Context, tx *gorm.DB, txn *models.Transaction) (Balances, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger reverse requires a database transaction")
	}

	legs, err := reverseLegs(txn)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve reverse legs")
	}

	now := time.Now().UTC()
	claim := tx.Model(&models.Transaction{}).
		Where("id = ? AND applied_at IS NOT NULL AND reversed_at IS NULL", txn.ID).
		Update("reversed_at", now)
	if claim.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, claim.Error, "claim transaction for reverse")
	}
	if claim.RowsAffected == 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "transaction %s is not reversible", txn.ID)
	}
	txn.ReversedAt = &now

	return e.mutate(ctx, tx, txn.AccountID, legs)
}

// GetBalance returns the current balance for one asset. Missing balance rows
// read as zero.
func (e *Engine) GetBalance(ctx context.Context, db *gorm.DB, accountID uuid.UUID, asset enums.Asset) (decimal.Decimal, error) {
	if !asset.IsValid() {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid asset %q", asset)
	}
	var bal models.Balance
	err := db.WithContext(ctx).
		Where("account_id = ? AND asset = ?", accountID, asset).
		First(&bal).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	return bal.Amount, nil
}

// AllBalances returns every balance row held by the account.
func (e *Engine) AllBalances(ctx context.Context, db *gorm.DB, accountID uuid.UUID) (Balances, error) {
	var rows []models.Balance
	if err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("asset ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balances")
	}
	balances := make(Balances, len(rows))
	for _, row := range rows {
		balances[row.Asset] = row.Amount
	}
	return balances, nil
}

// mutate applies all legs or none: any failing leg aborts the surrounding
// database transaction, so a two-leg gold trade can never half-apply. Legs
// are locked in asset order to keep concurrent compound mutations from
// deadlocking each other.
func (e *Engine) mutate(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, legs []Leg) (Balances, error) {
	account, err := lockAccount(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != enums.AccountStatusActive {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "account %s is %s", accountID, account.Status)
	}

	ordered := make([]Leg, len(legs))
	copy(ordered, legs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Asset < ordered[j].Asset })

	result := make(Balances, len(ordered))
	for _, leg := range ordered {
		bal, err := lockBalance(ctx, tx, accountID, leg.Asset)
		if err != nil {
			return nil, err
		}

		next := bal.Amount.Add(leg.Delta())
		if next.IsNegative() {
			return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
				"insufficient %s balance: have %s, requested %s",
				leg.Asset, bal.Amount.StringFixed(leg.Asset.Precision()), leg.Amount.StringFixed(leg.Asset.Precision())).
				WithDetails(map[string]any{
					"asset":     leg.Asset,
					"available": bal.Amount.String(),
					"requested": leg.Amount.String(),
				})
		}

		update := tx.Model(&models.Balance{}).
			Where("id = ? AND version = ?", bal.ID, bal.Version).
			Updates(map[string]any{
				"amount":  next,
				"version": bal.Version + 1,
			})
		if update.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, update.Error, "persist balance")
		}
		if update.RowsAffected == 0 {
			// Cannot happen while the row lock is held; any hit means the
			// caller bypassed the engine's locking discipline.
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "concurrent update on %s balance", leg.Asset)
		}
		result[leg.Asset] = next
	}
	return result, nil
}

func validateAmounts(txn *models.Transaction) error {
	if txn.Fee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "fee must not be negative")
	}
	switch txn.Type {
	case enums.TransactionTypeDeposit, enums.TransactionTypeWithdrawal:
		if !txn.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
		}
	case enums.TransactionTypeGoldPurchase, enums.TransactionTypeGoldSale:
		if !txn.Amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
		}
		if !txn.Grams.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "grams must be greater than zero")
		}
	case enums.TransactionTypePhysicalDelivery:
		if !txn.Grams.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "grams must be greater than zero")
		}
	default:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "transaction type %q cannot be applied directly", txn.Type)
	}
	if !txn.Currency.IsCash() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid cash currency %q", txn.Currency)
	}
	return nil
}
