package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/idempotency"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

const transactionNotificationConsumer = "transaction-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type accountResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// Consumer watches domain events and turns transaction lifecycle changes into
// user-facing notifications.
type Consumer struct {
	repo         repository
	accounts     accountResolver
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a transaction notification consumer.
func NewConsumer(repo repository, accounts accountResolver, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account resolver required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		accounts:     accounts,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !notifiableEvent(eventType) {
		c.logg.Info(logCtx, "skipping event without a user notification")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, transactionNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := c.buildNotification(ctx, eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, transactionNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event carries nothing to notify")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, transactionNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"user_id": notification.UserID.String(),
	}), "user notified of transaction change")
	return processResult{ack: true}
}

func notifiableEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventTransactionCompleted,
		enums.EventTransactionFailed,
		enums.EventTransactionCancelled,
		enums.EventTransactionRefunded:
		return true
	default:
		return false
	}
}

func (c *Consumer) buildNotification(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	switch eventType {
	case enums.EventTransactionCompleted:
		var payload payloads.TransactionSettledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		userID, err := c.resolveUser(ctx, payload.AccountID)
		if err != nil {
			return nil, err
		}
		title := "Transaction completed"
		message := fmt.Sprintf("Your %s of %s %s has settled.",
			describeTransactionType(payload.Type), payload.Amount.StringFixed(payload.Currency.Precision()), payload.Currency)
		if payload.Grams.IsPositive() {
			message = fmt.Sprintf("%s Gold moved: %s g.", message, payload.Grams.String())
		}
		return c.transactionNotification(userID, payload.TransactionID, title, message), nil

	case enums.EventTransactionFailed:
		var payload payloads.TransactionFailedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		userID, err := c.resolveUser(ctx, payload.AccountID)
		if err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Your %s could not be settled.", describeTransactionType(payload.Type))
		if payload.Reason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, payload.Reason)
		}
		return c.transactionNotification(userID, payload.TransactionID, "Transaction failed", message), nil

	case enums.EventTransactionCancelled:
		var payload payloads.TransactionCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		userID, err := c.resolveUser(ctx, payload.AccountID)
		if err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Your pending %s was cancelled.", describeTransactionType(payload.Type))
		if payload.Reason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, payload.Reason)
		}
		return c.transactionNotification(userID, payload.TransactionID, "Transaction cancelled", message), nil

	case enums.EventTransactionRefunded:
		var payload payloads.TransactionRefundedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		userID, err := c.resolveUser(ctx, payload.AccountID)
		if err != nil {
			return nil, err
		}
		message := fmt.Sprintf("Transaction %s was refunded: %s %s returned to your wallet.",
			payload.OriginalTransactionID, payload.Amount.StringFixed(payload.Currency.Precision()), payload.Currency)
		return c.transactionNotification(userID, payload.RefundTransactionID, "Transaction refunded", message), nil

	default:
		return nil, nil
	}
}

func (c *Consumer) resolveUser(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	if accountID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("account id missing")
	}
	account, err := c.accounts.GetByID(ctx, accountID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve account %s: %w", accountID, err)
	}
	return account.UserID, nil
}

func (c *Consumer) transactionNotification(userID, transactionID uuid.UUID, title, message string) *models.Notification {
	link := fmt.Sprintf("/transactions/%s", transactionID)
	return &models.Notification{
		UserID:  userID,
		Type:    enums.NotificationTypeTransactionUpdate,
		Title:   title,
		Message: strings.TrimSpace(message),
		Link:    stringPtr(link),
	}
}

func describeTransactionType(t enums.TransactionType) string {
	switch t {
	case enums.TransactionTypeDeposit:
		return "deposit"
	case enums.TransactionTypeWithdrawal:
		return "withdrawal"
	case enums.TransactionTypeGoldPurchase:
		return "gold purchase"
	case enums.TransactionTypeGoldSale:
		return "gold sale"
	case enums.TransactionTypePhysicalDelivery:
		return "physical delivery"
	case enums.TransactionTypeRefund:
		return "refund"
	default:
		return "transaction"
	}
}

func stringPtr(value string) *string {
	return &value
}
