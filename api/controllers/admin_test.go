package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/internal/admin"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

type testAdminService struct {
	reviewFn func(ctx context.Context, action enums.AdminAction, transactionID uuid.UUID, actor admin.Actor, reason string) (*models.Transaction, error)
}

func (s *testAdminService) Review(ctx context.Context, action enums.AdminAction, transactionID uuid.UUID, actor admin.Actor, reason string) (*models.Transaction, error) {
	if s.reviewFn != nil {
		return s.reviewFn(ctx, action, transactionID, actor, reason)
	}
	return &models.Transaction{ID: transactionID}, nil
}

func TestAdminReviewTransactionApprove(t *testing.T) {
	adminID := uuid.New()
	transactionID := uuid.New()
	svc := &testAdminService{
		reviewFn: func(ctx context.Context, action enums.AdminAction, id uuid.UUID, actor admin.Actor, reason string) (*models.Transaction, error) {
			if action != enums.AdminActionApprove {
				t.Fatalf("unexpected action %s", action)
			}
			if id != transactionID {
				t.Fatalf("unexpected transaction %s", id)
			}
			if actor.UserID != adminID || actor.Role != enums.UserRoleAdmin {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if reason != "documents verified" {
				t.Fatalf("unexpected reason %q", reason)
			}
			return &models.Transaction{ID: id, Status: enums.TransactionStatusCompleted}, nil
		},
	}

	body := strings.NewReader(`{"reason":"documents verified"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/transactions/"+transactionID.String()+"/approve", body)
	req = asStaff(req, adminID, enums.UserRoleAdmin)
	req = addRouteParams(req, "transactionId", transactionID.String(), "action", "approve")
	resp := httptest.NewRecorder()
	AdminReviewTransaction(svc, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusOK)
}

func TestAdminReviewTransactionUnknownAction(t *testing.T) {
	transactionID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/transactions/"+transactionID+"/bless", nil)
	req = asStaff(req, uuid.New(), enums.UserRoleAdmin)
	req = addRouteParams(req, "transactionId", transactionID, "action", "bless")
	resp := httptest.NewRecorder()
	AdminReviewTransaction(&testAdminService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}

func TestAdminListTransactionsFlaggedFilter(t *testing.T) {
	var got journal.ListParams
	svc := &testJournalService{
		listFn: func(ctx context.Context, params journal.ListParams) (*journal.ListResult, error) {
			got = params
			return &journal.ListResult{}, nil
		},
	}

	accountID := uuid.New()
	target := "/api/admin/v1/transactions?flagged=true&accountId=" + accountID.String()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = asStaff(req, uuid.New(), enums.UserRoleSupport)
	resp := httptest.NewRecorder()
	AdminListTransactions(svc, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusOK)
	if got.Filters.Flagged == nil || !*got.Filters.Flagged {
		t.Fatal("flagged filter not applied")
	}
	if got.Filters.AccountID == nil || *got.Filters.AccountID != accountID {
		t.Fatal("account filter not applied")
	}
}

func TestAdminTransactionStatsDefaultsWindow(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &testJournalService{
		statsFn: func(ctx context.Context, from, to time.Time) ([]journal.StatRow, error) {
			gotFrom, gotTo = from, to
			return []journal.StatRow{{
				Type:        enums.TransactionTypeDeposit,
				Status:      enums.TransactionStatusCompleted,
				Count:       4,
				TotalAmount: decimal.RequireFromString("400"),
			}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/transactions/stats", nil)
	req = asStaff(req, uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminTransactionStats(svc, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusOK)
	window := gotTo.Sub(gotFrom)
	if window != defaultStatsWindow {
		t.Fatalf("unexpected default window %s", window)
	}
}

func TestAdminTransactionStatsRejectsInvertedWindow(t *testing.T) {
	target := "/api/admin/v1/transactions/stats?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = asStaff(req, uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	AdminTransactionStats(&testJournalService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}
