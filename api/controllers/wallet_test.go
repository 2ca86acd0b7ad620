package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/internal/ledger"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// testSettlementService stubs the full settlement surface; tests set only
// the functions they exercise.
type testSettlementService struct {
	depositFn  func(ctx context.Context, params settlement.CashParams) (*models.Transaction, error)
	withdrawFn func(ctx context.Context, params settlement.CashParams) (*models.Transaction, error)
	buyFn      func(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error)
	sellFn     func(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error)
	deliveryFn func(ctx context.Context, params settlement.DeliveryParams) (*models.Transaction, error)
	cancelFn   func(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error)
}

func (s *testSettlementService) Deposit(ctx context.Context, params settlement.CashParams) (*models.Transaction, error) {
	if s.depositFn != nil {
		return s.depositFn(ctx, params)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) Withdraw(ctx context.Context, params settlement.CashParams) (*models.Transaction, error) {
	if s.withdrawFn != nil {
		return s.withdrawFn(ctx, params)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) BuyGold(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error) {
	if s.buyFn != nil {
		return s.buyFn(ctx, params)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) SellGold(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error) {
	if s.sellFn != nil {
		return s.sellFn(ctx, params)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) RequestDelivery(ctx context.Context, params settlement.DeliveryParams) (*models.Transaction, error) {
	if s.deliveryFn != nil {
		return s.deliveryFn(ctx, params)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) MarkProcessing(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (s *testSettlementService) Approve(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (s *testSettlementService) Reject(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (s *testSettlementService) Cancel(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, transactionID, review)
	}
	return &models.Transaction{}, nil
}

func (s *testSettlementService) Refund(ctx context.Context, transactionID uuid.UUID, review settlement.Review) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

type testBalanceReader struct {
	balancesFn func(ctx context.Context, accountID uuid.UUID) (ledger.Balances, error)
}

func (s *testBalanceReader) Balances(ctx context.Context, accountID uuid.UUID) (ledger.Balances, error) {
	if s.balancesFn != nil {
		return s.balancesFn(ctx, accountID)
	}
	return ledger.Balances{}, nil
}

func TestWalletBalancesSuccess(t *testing.T) {
	accountID := uuid.New()
	svc := &testBalanceReader{
		balancesFn: func(ctx context.Context, got uuid.UUID) (ledger.Balances, error) {
			if got != accountID {
				t.Fatalf("unexpected account %s", got)
			}
			return ledger.Balances{
				enums.AssetUSD:  decimal.RequireFromString("150.25"),
				enums.AssetGold: decimal.RequireFromString("3.5"),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req = asCustomer(req, uuid.New(), accountID)
	resp := httptest.NewRecorder()
	WalletBalances(svc, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusOK)
	var envelope struct {
		Data struct {
			AccountID string            `json:"account_id"`
			Balances  map[string]string `json:"balances"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AccountID != accountID.String() {
		t.Fatalf("unexpected account in response: %s", envelope.Data.AccountID)
	}
	if envelope.Data.Balances["XAU"] != "3.5" {
		t.Fatalf("unexpected gold balance %q", envelope.Data.Balances["XAU"])
	}
}

func TestWalletBalancesRejectsStaffToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req = asStaff(req, uuid.New(), enums.UserRoleAdmin)
	resp := httptest.NewRecorder()
	WalletBalances(&testBalanceReader{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusForbidden)
}

func TestWalletDepositSuccess(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	svc := &testSettlementService{
		depositFn: func(ctx context.Context, params settlement.CashParams) (*models.Transaction, error) {
			if params.AccountID != accountID || params.CreatedBy != userID {
				t.Fatalf("unexpected params %+v", params)
			}
			if params.Currency != enums.AssetUSD {
				t.Fatalf("unexpected currency %s", params.Currency)
			}
			if !params.Amount.Equal(decimal.RequireFromString("100.50")) {
				t.Fatalf("unexpected amount %s", params.Amount)
			}
			return &models.Transaction{ID: uuid.New(), AccountID: accountID}, nil
		},
	}

	body := strings.NewReader(`{"currency":"USD","amount":"100.50"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposits", body)
	req = asCustomer(req, userID, accountID)
	resp := httptest.NewRecorder()
	WalletDeposit(svc, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusCreated)
}

func TestWalletDepositRejectsGoldCurrency(t *testing.T) {
	body := strings.NewReader(`{"currency":"XAU","amount":"5"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/deposits", body)
	req = asCustomer(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	WalletDeposit(&testSettlementService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}

func TestWalletWithdrawRejectsMalformedAmount(t *testing.T) {
	body := strings.NewReader(`{"currency":"USD","amount":"ten"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", body)
	req = asCustomer(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	WalletWithdraw(&testSettlementService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}

func TestWalletWithdrawRequiresAuth(t *testing.T) {
	body := strings.NewReader(`{"currency":"USD","amount":"10"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", body)
	resp := httptest.NewRecorder()
	WalletWithdraw(&testSettlementService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusUnauthorized)
}
