package notifications

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

type stubAccountResolver struct {
	account *models.Account
	err     error
}

func (s *stubAccountResolver) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestConsumer_BuildNotificationCompleted(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	consumer := &Consumer{accounts: &stubAccountResolver{account: &models.Account{ID: accountID, UserID: userID}}}

	payload := payloads.TransactionSettledEvent{
		TransactionID: uuid.New(),
		AccountID:     accountID,
		Type:          enums.TransactionTypeGoldPurchase,
		Currency:      enums.AssetUSD,
		Amount:        decimal.RequireFromString("250.00"),
		Grams:         decimal.RequireFromString("3.215000"),
		CompletedAt:   time.Now().UTC(),
	}

	notification, err := consumer.buildNotification(context.Background(), enums.EventTransactionCompleted, mustJSON(t, payload))
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if notification.UserID != userID {
		t.Fatalf("expected notification for user %s, got %s", userID, notification.UserID)
	}
	if notification.Type != enums.NotificationTypeTransactionUpdate {
		t.Fatalf("unexpected type %s", notification.Type)
	}
	if !strings.Contains(notification.Message, "gold purchase") {
		t.Fatalf("message missing transaction kind: %q", notification.Message)
	}
	if !strings.Contains(notification.Message, "3.215") {
		t.Fatalf("message missing gram amount: %q", notification.Message)
	}
	if notification.Link == nil || !strings.Contains(*notification.Link, payload.TransactionID.String()) {
		t.Fatalf("expected transaction link, got %v", notification.Link)
	}
}

func TestConsumer_BuildNotificationFailedWithReason(t *testing.T) {
	userID := uuid.New()
	consumer := &Consumer{accounts: &stubAccountResolver{account: &models.Account{ID: uuid.New(), UserID: userID}}}

	payload := payloads.TransactionFailedEvent{
		TransactionID: uuid.New(),
		AccountID:     uuid.New(),
		Type:          enums.TransactionTypeWithdrawal,
		Reason:        "insufficient funds",
	}

	notification, err := consumer.buildNotification(context.Background(), enums.EventTransactionFailed, mustJSON(t, payload))
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if notification.Title != "Transaction failed" {
		t.Fatalf("unexpected title %q", notification.Title)
	}
	if !strings.Contains(notification.Message, "insufficient funds") {
		t.Fatalf("message missing failure reason: %q", notification.Message)
	}
}

func TestConsumer_BuildNotificationRefunded(t *testing.T) {
	userID := uuid.New()
	consumer := &Consumer{accounts: &stubAccountResolver{account: &models.Account{ID: uuid.New(), UserID: userID}}}

	original := uuid.New()
	refund := uuid.New()
	payload := payloads.TransactionRefundedEvent{
		OriginalTransactionID: original,
		RefundTransactionID:   refund,
		AccountID:             uuid.New(),
		Currency:              enums.AssetUSD,
		Amount:                decimal.RequireFromString("99.90"),
		RefundedAt:            time.Now().UTC(),
	}

	notification, err := consumer.buildNotification(context.Background(), enums.EventTransactionRefunded, mustJSON(t, payload))
	if err != nil {
		t.Fatalf("buildNotification: %v", err)
	}
	if !strings.Contains(notification.Message, original.String()) {
		t.Fatalf("message missing original transaction id: %q", notification.Message)
	}
	if notification.Link == nil || !strings.Contains(*notification.Link, refund.String()) {
		t.Fatalf("expected refund transaction link, got %v", notification.Link)
	}
}

func TestConsumer_BuildNotificationMissingAccount(t *testing.T) {
	consumer := &Consumer{accounts: &stubAccountResolver{}}

	payload := payloads.TransactionFailedEvent{
		TransactionID: uuid.New(),
		Type:          enums.TransactionTypeDeposit,
	}

	if _, err := consumer.buildNotification(context.Background(), enums.EventTransactionFailed, mustJSON(t, payload)); err == nil {
		t.Fatal("expected error for missing account id")
	}
}

func TestNotifiableEvent(t *testing.T) {
	if notifiableEvent(enums.EventTransactionCreated) {
		t.Fatal("created events should not notify users")
	}
	if !notifiableEvent(enums.EventTransactionCompleted) {
		t.Fatal("completed events should notify users")
	}
	if notifiableEvent(enums.EventAccountDeactivated) {
		t.Fatal("account deactivation is handled elsewhere")
	}
}
