package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/api/responses"
	"github.com/zahabi-gold/zahabi-backend/api/validators"
	"github.com/zahabi-gold/zahabi-backend/internal/admin"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

const defaultStatsWindow = 30 * 24 * time.Hour

// AdminListTransactions searches across all accounts. It accepts the same
// filters as the customer listing plus accountId and flagged.
func AdminListTransactions(svc journal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journal service unavailable"))
			return
		}

		filters, err := transactionFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("accountId")); raw != "" {
			accountID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid accountId"))
				return
			}
			filters.AccountID = &accountID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("flagged")); raw != "" {
			flagged, err := validators.ParseQueryBool(r, "flagged")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.Flagged = &flagged
		}

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

// AdminGetTransaction returns any transaction by id, unscoped.
func AdminGetTransaction(svc journal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journal service unavailable"))
			return
		}

		transactionID, err := parseTransactionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Get(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// AdminTransactionStats aggregates counts and totals per type and status
// for the monitoring dashboard. The window defaults to the last 30 days.
func AdminTransactionStats(svc journal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "journal service unavailable"))
			return
		}

		now := time.Now().UTC()
		from := now.Add(-defaultStatsWindow)
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

		rows, err := svc.Stats(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"from":  from,
			"to":    to,
			"stats": rows,
		})
	}
}

type reviewRequest struct {
	Reason string `json:"reason"`
}

// AdminReviewTransaction applies a privileged action (process, approve,
// reject, flag, unflag, cancel, refund) named in the URL. Per-action permission checks and
// the audit record live in the service.
func AdminReviewTransaction(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := requestUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactionID, err := parseTransactionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action := enums.AdminAction(strings.TrimSpace(chi.URLParam(r, "action")))
		if !action.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown review action %q", action))
			return
		}

		var body reviewRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		txn, err := svc.Review(r.Context(), action, transactionID, admin.Actor{
			UserID: userID,
			Role:   requestRole(r),
		}, validators.SanitizeString(body.Reason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}
