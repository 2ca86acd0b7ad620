package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/api/validators"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

// goldOrderRequest is shared by buys, sells, and delivery requests. Currency
// is the cash leg for trades and the valuation currency for deliveries.
type goldOrderRequest struct {
	Currency string `json:"currency" validate:"required"`
	Grams    string `json:"grams" validate:"required"`
}

func (req goldOrderRequest) parse() (enums.Asset, decimal.Decimal, error) {
	currency, err := enums.ParseCashCurrency(req.Currency)
	if err != nil {
		return "", decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}
	grams, err := decimal.NewFromString(req.Grams)
	if err != nil {
		return "", decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid grams")
	}
	return currency, grams, nil
}

func decodeGoldOrder(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (settlement.TradeParams, bool) {
	userID, err := requestUser(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return settlement.TradeParams{}, false
	}
	accountID, err := requestAccount(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return settlement.TradeParams{}, false
	}

	var body goldOrderRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return settlement.TradeParams{}, false
	}
	currency, grams, err := body.parse()
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return settlement.TradeParams{}, false
	}

	return settlement.TradeParams{
		AccountID: accountID,
		CreatedBy: userID,
		Currency:  currency,
		Grams:     grams,
	}, true
}

// GoldBuy executes an instant purchase at the latest price snapshot.
func GoldBuy(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		params, ok := decodeGoldOrder(r, logg, w)
		if !ok {
			return
		}

		txn, err := svc.BuyGold(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// GoldSell executes an instant sale at the latest price snapshot.
func GoldSell(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		params, ok := decodeGoldOrder(r, logg, w)
		if !ok {
			return
		}

		txn, err := svc.SellGold(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// GoldDelivery requests physical delivery of held gold. The transaction
// stays pending until the fulfilment team approves it.
func GoldDelivery(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		params, ok := decodeGoldOrder(r, logg, w)
		if !ok {
			return
		}

		txn, err := svc.RequestDelivery(r.Context(), settlement.DeliveryParams{
			AccountID: params.AccountID,
			CreatedBy: params.CreatedBy,
			Currency:  params.Currency,
			Grams:     params.Grams,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}
