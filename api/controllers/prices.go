package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/api/validators"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

const (
	defaultHistoryWindow = 24 * time.Hour
	maxHistoryPoints     = 500
)

type priceReader interface {
	Latest(ctx context.Context, currency enums.Asset) (*models.PriceSnapshot, error)
	History(ctx context.Context, currency enums.Asset, from, to time.Time, limit int) ([]models.PriceSnapshot, error)
}

func priceCurrency(r *http.Request) (enums.Asset, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("currency"))
	if raw == "" {
		return enums.AssetUSD, nil
	}
	currency, err := enums.ParseCashCurrency(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}
	return currency, nil
}

// GoldPrice returns the most recent snapshot for the requested currency,
// defaulting to USD.
func GoldPrice(svc priceReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		currency, err := priceCurrency(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Latest(r.Context(), currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// GoldPriceHistory returns snapshots in a window, newest first. The window
// defaults to the last 24 hours.
func GoldPriceHistory(svc priceReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		currency, err := priceCurrency(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		from := now.Add(-defaultHistoryWindow)
		to := now

		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			value, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from timestamp"))
				return
			}
			from = value
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			value, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to timestamp"))
				return
			}
			to = value
		}
		if !to.After(from) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from must precede to"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", maxHistoryPoints, 1, maxHistoryPoints)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshots, err := svc.History(r.Context(), currency, from, to, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"currency": currency,
			"from":     from,
			"to":       to,
			"items":    snapshots,
		})
	}
}
