package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

func TestGoldBuySuccess(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	svc := &testSettlementService{
		buyFn: func(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error) {
			if params.AccountID != accountID || params.CreatedBy != userID {
				t.Fatalf("unexpected params %+v", params)
			}
			if params.Currency != enums.AssetEGP {
				t.Fatalf("unexpected currency %s", params.Currency)
			}
			if !params.Grams.Equal(decimal.RequireFromString("2.25")) {
				t.Fatalf("unexpected grams %s", params.Grams)
			}
			return &models.Transaction{ID: uuid.New(), Status: enums.TransactionStatusCompleted}, nil
		},
	}

	body := strings.NewReader(`{"currency":"EGP","grams":"2.25"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gold/buy", body)
	req = asCustomer(req, userID, accountID)
	resp := httptest.NewRecorder()
	GoldBuy(svc, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusCreated)
}

func TestGoldSellPassesThroughServiceError(t *testing.T) {
	svc := &testSettlementService{
		sellFn: func(ctx context.Context, params settlement.TradeParams) (*models.Transaction, error) {
			return nil, insufficientGold()
		},
	}

	body := strings.NewReader(`{"currency":"USD","grams":"100"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gold/sell", body)
	req = asCustomer(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	GoldSell(svc, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusUnprocessableEntity)
}

func TestGoldDeliveryMapsParams(t *testing.T) {
	var got settlement.DeliveryParams
	svc := &testSettlementService{
		deliveryFn: func(ctx context.Context, params settlement.DeliveryParams) (*models.Transaction, error) {
			got = params
			return &models.Transaction{ID: uuid.New(), Status: enums.TransactionStatusPending}, nil
		},
	}

	userID := uuid.New()
	accountID := uuid.New()
	body := strings.NewReader(`{"currency":"USD","grams":"10"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gold/delivery", body)
	req = asCustomer(req, userID, accountID)
	resp := httptest.NewRecorder()
	GoldDelivery(svc, testLogger())(resp, req)

	requireStatus(t, resp.Code, http.StatusCreated)
	if got.AccountID != accountID || got.CreatedBy != userID {
		t.Fatalf("unexpected params %+v", got)
	}
	if !got.Grams.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected grams %s", got.Grams)
	}
}

func TestGoldBuyRejectsMissingGrams(t *testing.T) {
	body := strings.NewReader(`{"currency":"USD"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gold/buy", body)
	req = asCustomer(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	GoldBuy(&testSettlementService{}, testLogger())(resp, req)
	requireStatus(t, resp.Code, http.StatusBadRequest)
}
