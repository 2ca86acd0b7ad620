package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/api/validators"
	"github.com/zahabi-gold/zahabi-backend/internal/ledger"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

// cashMovementRequest is shared by deposits and withdrawals. Amounts travel
// as strings so clients never round through float64.
type cashMovementRequest struct {
	Currency string `json:"currency" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

func (req cashMovementRequest) parse() (enums.Asset, decimal.Decimal, error) {
	currency, err := enums.ParseCashCurrency(req.Currency)
	if err != nil {
		return "", decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return "", decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	return currency, amount, nil
}

type balanceReader interface {
	Balances(ctx context.Context, accountID uuid.UUID) (ledger.Balances, error)
}

// WalletBalances returns every asset balance on the caller's account, gold
// grams included.
func WalletBalances(svc balanceReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		accountID, err := requestAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balances, err := svc.Balances(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"account_id": accountID,
			"balances":   balances,
		})
	}
}

// WalletDeposit creates a pending deposit for admin review.
func WalletDeposit(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return cashMovementHandler(nil, logg)
	}
	return cashMovementHandler(svc.Deposit, logg)
}

// WalletWithdraw creates a pending withdrawal; funds stay reserved until an
// admin approves or rejects it.
func WalletWithdraw(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return cashMovementHandler(nil, logg)
	}
	return cashMovementHandler(svc.Withdraw, logg)
}

func cashMovementHandler(op func(ctx context.Context, params settlement.CashParams) (*models.Transaction, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if op == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		userID, err := requestUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID, err := requestAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cashMovementRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		currency, amount, err := body.parse()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := op(r.Context(), settlement.CashParams{
			AccountID: accountID,
			CreatedBy: userID,
			Currency:  currency,
			Amount:    amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
