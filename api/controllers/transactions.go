package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/api/validators"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// transactionFilters parses the shared query surface for history listings.
// The account scope is applied by the caller, not here.
func transactionFilters(r *http.Request) (journal.ListFilters, error) {
	var filters journal.ListFilters
	query := r.URL.Query()

	for _, raw := range splitCSV(query.Get("type")) {
		parsed, err := enums.ParseTransactionType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		filters.Types = append(filters.Types, parsed)
	}
	for _, raw := range splitCSV(query.Get("status")) {
		parsed, err := enums.ParseTransactionStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Statuses = append(filters.Statuses, parsed)
	}

	if raw := strings.TrimSpace(query.Get("currency")); raw != "" {
		currency, err := enums.ParseAsset(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency filter")
		}
		filters.Currency = &currency
	}

	if raw := strings.TrimSpace(query.Get("minAmount")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minAmount")
		}
		filters.MinAmount = &value
	}
	if raw := strings.TrimSpace(query.Get("maxAmount")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maxAmount")
		}
		filters.MaxAmount = &value
	}

	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		value, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from timestamp")
		}
		filters.From = &value
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		value, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to timestamp")
		}
		filters.To = &value
	}

	return filters, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseTransactionID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id")
	}
	return id, nil
}

// ListTransactions returns the caller's transaction history, newest first,
// with keyset cursor pagination.
func ListTransactions(svc journal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journal service unavailable"))
			return
		}

		accountID, err := requestAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := transactionFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.AccountID = &accountID

		limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), journal.ListParams{
			Filters: filters,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetTransaction returns a single transaction scoped to the caller's account.
func GetTransaction(svc journal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journal service unavailable"))
			return
		}

		accountID, err := requestAccount(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactionID, err := parseTransactionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.GetForAccount(r.Context(), transactionID, accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelTransaction lets the owner cancel their own pending request. The
// journal lookup scopes the id to the caller's account before the state
// machine runs; instant trades settle atomically and never pass through here.
func CancelTransaction(reader journal.Service, svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil || svc == nil {
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
		transactionID, err := parseTransactionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reader.GetForAccount(r.Context(), transactionID, accountID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The reason is optional, so an empty body is fine.
		var body cancelRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		txn, err := svc.Cancel(r.Context(), transactionID, settlement.Review{
			ActorID:   userID,
			ActorRole: requestRole(r),
			Reason:    validators.SanitizeString(body.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}
