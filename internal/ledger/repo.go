package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

// forUpdate adds a row lock on dialects that support it. The sqlite driver
// used in tests serializes writes on its own and rejects FOR UPDATE syntax.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func lockAccount(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := forUpdate(tx.WithContext(ctx)).
		Where("id = ?", accountID).
		First(&account).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "account %s not found", accountID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return &account, nil
}

// lockBalance fetches the balance row for one asset under a row lock,
// creating a zero row on first touch so credits to a fresh asset work.
func lockBalance(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, asset enums.Asset) (*models.Balance, error) {
	var bal models.Balance
	err := forUpdate(tx.WithContext(ctx)).
		Where("account_id = ? AND asset = ?", accountID, asset).
		First(&bal).Error
	if err == nil {
		return &bal, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}

	bal = models.Balance{
		ID:        uuid.New(),
		AccountID: accountID,
		Asset:     asset,
		Amount:    decimal.Zero,
		Version:   1,
	}
	if createErr := tx.WithContext(ctx).Create(&bal).Error; createErr != nil {
		// A concurrent creator may have won the insert race; reread under
		// the lock before giving up.
		retryErr := forUpdate(tx.WithContext(ctx)).
			Where("account_id = ? AND asset = ?", accountID, asset).
			First(&bal).Error
		if retryErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create balance row")
		}
	}
	return &bal, nil
}

// SeedBalances creates zero balance rows for every supported asset, used
// when an account is opened so balance listings are always complete.
func SeedBalances(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) error {
	assets := append(enums.CashCurrencies(), enums.AssetGold)
	rows := make([]models.Balance, 0, len(assets))
	for _, asset := range assets {
		rows = append(rows, models.Balance{
			ID:        uuid.New(),
			AccountID: accountID,
			Asset:     asset,
			Amount:    decimal.Zero,
			Version:   1,
		})
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed balances")
	}
	return nil
}
