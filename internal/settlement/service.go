package settlement

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/ledger"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

// minRejectReasonLen keeps rejection reasons meaningful for the customer
// reading them and the auditor reviewing them.
const minRejectReasonLen = 10

type service struct {
	runner TxRunner
	repo   journal.Repository
	engine *ledger.Engine
	fees   FeeSchedule
	quoter PriceQuoter
	events Events
	logg   *logger.Logger
}

// NewService wires the settlement flow.
func NewService(runner TxRunner, repo journal.Repository, engine *ledger.Engine, fees FeeSchedule, quoter PriceQuoter, events Events, logg *logger.Logger) (Service, error) {
	if runner == nil || repo == nil || engine == nil || events == nil || logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement service missing dependencies")
	}
	return &service{
		runner: runner,
		repo:   repo,
		engine: engine,
		fees:   fees,
		quoter: quoter,
		events: events,
		logg:   logg,
	}, nil
}

func (s *service) Deposit(ctx context.Context, params CashParams) (*models.Transaction, error) {
	if err := validateCashParams(params); err != nil {
		return nil, err
	}

	fee := s.fees.For(enums.TransactionTypeDeposit, params.Amount, params.Currency)
	net := params.Amount.Sub(fee)
	if !net.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount does not cover the fee")
	}

	txn := &models.Transaction{
		ID:        uuid.New(),
		AccountID: params.AccountID,
		Type:      enums.TransactionTypeDeposit,
		Status:    enums.TransactionStatusPending,
		Currency:  params.Currency,
		Amount:    params.Amount.Round(params.Currency.Precision()),
		Fee:       fee,
		NetAmount: net,
		CreatedBy: params.CreatedBy,
	}

	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deposit")
		}
		return s.emitCreated(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTransactionID(ctx, txn.ID.String()), "deposit requested")
	return txn, nil
}

func (s *service) Withdraw(ctx context.Context, params CashParams) (*models.Transaction, error) {
	if err := validateCashParams(params); err != nil {
		return nil, err
	}

	fee := s.fees.For(enums.TransactionTypeWithdrawal, params.Amount, params.Currency)
	total := params.Amount.Add(fee)
	txn := &models.Transaction{
		ID:        uuid.New(),
		AccountID: params.AccountID,
		Type:      enums.TransactionTypeWithdrawal,
		Status:    enums.TransactionStatusPending,
		Currency:  params.Currency,
		Amount:    params.Amount.Round(params.Currency.Precision()),
		Fee:       fee,
		NetAmount: total,
		CreatedBy: params.CreatedBy,
	}

	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		// Early affordability check; the ledger re-checks under locks when
		// the withdrawal is approved.
		available, err := s.engine.GetBalance(ctx, tx, params.AccountID, params.Currency)
		if err != nil {
			return err
		}
		if available.LessThan(total) {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
				"insufficient %s balance: have %s, requested %s",
				params.Currency, available.StringFixed(params.Currency.Precision()), total.StringFixed(params.Currency.Precision()))
		}
		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdrawal")
		}
		return s.emitCreated(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTransactionID(ctx, txn.ID.String()), "withdrawal requested")
	return txn, nil
}

func (s *service) BuyGold(ctx context.Context, params TradeParams) (*models.Transaction, error) {
	return s.trade(ctx, enums.TransactionTypeGoldPurchase, params)
}

func (s *service) SellGold(ctx context.Context, params TradeParams) (*models.Transaction, error) {
	return s.trade(ctx, enums.TransactionTypeGoldSale, params)
}

// trade settles a gold trade instantly at the latest quote. The pending
// entry commits first; both legs then apply and the entry completes in a
// follow-up transaction, so a refused leg fails the entry instead of
// erasing it.
func (s *service) trade(ctx context.Context, txType enums.TransactionType, params TradeParams) (*models.Transaction, error) {
	if err := validateTradeParams(params); err != nil {
		return nil, err
	}
	if s.quoter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price feed unavailable")
	}

	quote, err := s.quoter.Latest(ctx, params.Currency)
	if err != nil {
		return nil, err
	}

	grams := params.Grams.Round(enums.AssetGold.Precision())
	amount := grams.Mul(quote.Close).Round(params.Currency.Precision())
	fee := s.fees.For(txType, amount, params.Currency)

	net := amount.Add(fee)
	if txType == enums.TransactionTypeGoldSale {
		net = amount.Sub(fee)
		if !net.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale proceeds do not cover the fee")
		}
	}

	txn := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       params.AccountID,
		Type:            txType,
		Status:          enums.TransactionStatusPending,
		Currency:        params.Currency,
		Amount:          amount,
		Fee:             fee,
		NetAmount:       net,
		Grams:           grams,
		PricePerGram:    quote.Close,
		PriceSnapshotID: &quote.ID,
		CreatedBy:       params.CreatedBy,
	}

	// The pending entry commits on its own before settlement runs, so a
	// rejected leg leaves an auditable failed entry instead of erasing the
	// request.
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gold trade")
		}
		return s.emitCreated(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var applyErr error
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.engine.Apply(ctx, tx, txn); err != nil {
			applyErr = err
			return err
		}
		moved, err := repo.UpdateStatus(ctx, txn.ID, openStatuses, enums.TransactionStatusCompleted, map[string]any{
			"completed_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete gold trade")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "gold trade %s raced another settlement", txn.ID)
		}
		txn.Status = enums.TransactionStatusCompleted
		txn.CompletedAt = &now
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCompleted,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Data: payloads.TransactionSettledEvent{
				TransactionID: txn.ID,
				AccountID:     txn.AccountID,
				Type:          txn.Type,
				Currency:      txn.Currency,
				Amount:        txn.Amount,
				Fee:           txn.Fee,
				Grams:         txn.Grams,
				PricePerGram:  txn.PricePerGram,
				CompletedAt:   now,
			},
			Version: 1,
		})
	})
	if err != nil {
		if applyErr != nil && ledgerRejection(applyErr) {
			s.failEntry(ctx, txn, applyErr)
		}
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID.String(),
		"grams":          grams.String(),
		"price_per_gram": quote.Close.String(),
	})
	s.logg.Info(logCtx, "gold trade settled")
	return txn, nil
}

func (s *service) RequestDelivery(ctx context.Context, params DeliveryParams) (*models.Transaction, error) {
	if params.AccountID == uuid.Nil || params.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account and creator ids required")
	}
	if !params.Currency.IsCash() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency %q", params.Currency)
	}
	if !params.Grams.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grams must be greater than zero")
	}
	if s.quoter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price feed unavailable")
	}

	// The delivery fee is a percentage of the metal's cash value at
	// request time.
	quote, err := s.quoter.Latest(ctx, params.Currency)
	if err != nil {
		return nil, err
	}
	grams := params.Grams.Round(enums.AssetGold.Precision())
	value := grams.Mul(quote.Close).Round(params.Currency.Precision())
	fee := s.fees.For(enums.TransactionTypePhysicalDelivery, value, params.Currency)

	txn := &models.Transaction{
		ID:              uuid.New(),
		AccountID:       params.AccountID,
		Type:            enums.TransactionTypePhysicalDelivery,
		Status:          enums.TransactionStatusPending,
		Currency:        params.Currency,
		Amount:          value,
		Fee:             fee,
		NetAmount:       fee,
		Grams:           grams,
		PricePerGram:    quote.Close,
		PriceSnapshotID: &quote.ID,
		CreatedBy:       params.CreatedBy,
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		held, err := s.engine.GetBalance(ctx, tx, params.AccountID, enums.AssetGold)
		if err != nil {
			return err
		}
		if held.LessThan(grams) {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
				"insufficient XAU balance: have %s, requested %s",
				held.StringFixed(enums.AssetGold.Precision()), grams.StringFixed(enums.AssetGold.Precision()))
		}
		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery request")
		}
		return s.emitCreated(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTransactionID(ctx, txn.ID.String()), "physical delivery requested")
	return txn, nil
}

func (s *service) MarkProcessing(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(loaded.Status, enums.TransactionStatusProcessing); err != nil {
			return err
		}
		now := time.Now().UTC()
		moved, err := repo.UpdateStatus(ctx, transactionID,
			[]enums.TransactionStatus{enums.TransactionStatusPending},
			enums.TransactionStatusProcessing,
			map[string]any{"processing_at": now, "reviewed_by": review.ActorID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark processing")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s left pending concurrently", transactionID)
		}
		loaded.Status = enums.TransactionStatusProcessing
		loaded.ProcessingAt = &now
		loaded.ReviewedBy = &review.ActorID
		txn = loaded
		return s.audit(ctx, tx, enums.AdminActionProcess, loaded, review)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Approve(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	var txn *models.Transaction
	var rejected *models.Transaction
	var applyErr error
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(loaded.Status, enums.TransactionStatusCompleted); err != nil {
			return err
		}

		if _, err := s.engine.Apply(ctx, tx, loaded); err != nil {
			rejected, applyErr = loaded, err
			return err
		}

		now := time.Now().UTC()
		moved, err := repo.UpdateStatus(ctx, transactionID, openStatuses,
			enums.TransactionStatusCompleted,
			map[string]any{"completed_at": now, "reviewed_by": review.ActorID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete transaction")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s was settled concurrently", transactionID)
		}
		loaded.Status = enums.TransactionStatusCompleted
		loaded.CompletedAt = &now
		loaded.ReviewedBy = &review.ActorID
		txn = loaded

		if err := s.audit(ctx, tx, enums.AdminActionApprove, loaded, review); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCompleted,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: review.ActorID},
			Data: payloads.TransactionSettledEvent{
				TransactionID: loaded.ID,
				AccountID:     loaded.AccountID,
				Type:          loaded.Type,
				Currency:      loaded.Currency,
				Amount:        loaded.Amount,
				Fee:           loaded.Fee,
				Grams:         loaded.Grams,
				PricePerGram:  loaded.PricePerGram,
				CompletedAt:   now,
			},
			Version: 1,
		})
	})
	if err != nil {
		// A refused leg lands the entry in failed with the ledger's
		// reason; the approve itself still reports the refusal.
		if rejected != nil && ledgerRejection(applyErr) {
			s.failEntry(ctx, rejected, applyErr)
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithTransactionID(ctx, transactionID.String()), "transaction approved")
	return txn, nil
}

func (s *service) Reject(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	if utf8.RuneCountInString(strings.TrimSpace(review.Reason)) < minRejectReasonLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"rejection reason must be at least %d characters", minRejectReasonLen)
	}

	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(loaded.Status, enums.TransactionStatusFailed); err != nil {
			return err
		}

		now := time.Now().UTC()
		moved, err := repo.UpdateStatus(ctx, transactionID, openStatuses,
			enums.TransactionStatusFailed,
			map[string]any{"failed_at": now, "failure_reason": review.Reason, "reviewed_by": review.ActorID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail transaction")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s was settled concurrently", transactionID)
		}
		loaded.Status = enums.TransactionStatusFailed
		loaded.FailedAt = &now
		loaded.FailureReason = &review.Reason
		loaded.ReviewedBy = &review.ActorID
		txn = loaded

		if err := s.audit(ctx, tx, enums.AdminActionReject, loaded, review); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFailed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: review.ActorID},
			Data: payloads.TransactionFailedEvent{
				TransactionID: loaded.ID,
				AccountID:     loaded.AccountID,
				Type:          loaded.Type,
				Reason:        review.Reason,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) Cancel(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(loaded.Status, enums.TransactionStatusCancelled); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{"cancelled_at": now, "reviewed_by": review.ActorID}
		if review.Reason != "" {
			updates["review_notes"] = review.Reason
		}
		moved, err := repo.UpdateStatus(ctx, transactionID, openStatuses,
			enums.TransactionStatusCancelled, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel transaction")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s was settled concurrently", transactionID)
		}
		loaded.Status = enums.TransactionStatusCancelled
		loaded.CancelledAt = &now
		txn = loaded

		if err := s.audit(ctx, tx, enums.AdminActionCancel, loaded, review); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCancelled,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: review.ActorID},
			Data: payloads.TransactionCancelledEvent{
				TransactionID: loaded.ID,
				AccountID:     loaded.AccountID,
				Type:          loaded.Type,
				CancelledAt:   now,
				Reason:        review.Reason,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Refund reverses a completed transaction exactly once: the original's legs
// run inverted under the same locks, the original flips to refunded, and a
// refund entry records the reversal.
func (s *service) Refund(ctx context.Context, transactionID uuid.UUID, review Review) (*models.Transaction, error) {
	if review.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund reason required")
	}

	var refund *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		original, err := s.load(ctx, repo, transactionID)
		if err != nil {
			return err
		}
		if original.Type == enums.TransactionTypeRefund {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund entries cannot be refunded")
		}
		if err := ValidateTransition(original.Status, enums.TransactionStatusRefunded); err != nil {
			return err
		}

		if _, err := s.engine.Reverse(ctx, tx, original); err != nil {
			return err
		}

		now := time.Now().UTC()
		moved, err := repo.UpdateStatus(ctx, transactionID,
			[]enums.TransactionStatus{enums.TransactionStatusCompleted},
			enums.TransactionStatusRefunded,
			map[string]any{"refunded_at": now, "reviewed_by": review.ActorID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark refunded")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s was refunded concurrently", transactionID)
		}

		refund = &models.Transaction{
			ID:                    uuid.New(),
			AccountID:             original.AccountID,
			Type:                  enums.TransactionTypeRefund,
			Status:                enums.TransactionStatusCompleted,
			Currency:              original.Currency,
			Amount:                original.Amount,
			Fee:                   original.Fee,
			NetAmount:             original.NetAmount,
			Grams:                 original.Grams,
			PricePerGram:          original.PricePerGram,
			PriceSnapshotID:       original.PriceSnapshotID,
			OriginalTransactionID: &original.ID,
			ReviewNotes:           &review.Reason,
			CreatedBy:             review.ActorID,
			CompletedAt:           &now,
		}
		if err := repo.Create(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund entry")
		}

		if err := s.audit(ctx, tx, enums.AdminActionRefund, original, review); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionRefunded,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   original.ID,
			Actor:         &outbox.ActorRef{UserID: review.ActorID},
			Data: payloads.TransactionRefundedEvent{
				OriginalTransactionID: original.ID,
				RefundTransactionID:   refund.ID,
				AccountID:             original.AccountID,
				Currency:              original.Currency,
				Amount:                original.Amount,
				Grams:                 original.Grams,
				RefundedAt:            now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithTransactionID(ctx, transactionID.String()), "transaction refunded")
	return refund, nil
}

// ledgerRejection reports whether the error is a terminal ledger verdict on
// the entry itself, as opposed to an infrastructure failure worth retrying.
func ledgerRejection(err error) bool {
	return pkgerrors.Is(err, pkgerrors.CodeInsufficientFunds) ||
		pkgerrors.Is(err, pkgerrors.CodeValidation) ||
		pkgerrors.Is(err, pkgerrors.CodeStateConflict) ||
		pkgerrors.Is(err, pkgerrors.CodeConflict)
}

// failEntry lands a rolled-back settlement in failed, carrying the ledger's
// verdict as the failure reason. It runs in its own transaction after the
// settlement rollback; losing the race to another reviewer just means the
// entry already left its open state.
func (s *service) failEntry(ctx context.Context, txn *models.Transaction, cause error) {
	reason := cause.Error()
	if typed := pkgerrors.As(cause); typed != nil {
		reason = typed.Message()
	}

	now := time.Now().UTC()
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStatus(ctx, txn.ID, openStatuses,
			enums.TransactionStatusFailed,
			map[string]any{"failed_at": now, "failure_reason": reason})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail transaction")
		}
		if !moved {
			return nil
		}
		txn.Status = enums.TransactionStatusFailed
		txn.FailedAt = &now
		txn.FailureReason = &reason
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFailed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Data: payloads.TransactionFailedEvent{
				TransactionID: txn.ID,
				AccountID:     txn.AccountID,
				Type:          txn.Type,
				Reason:        reason,
			},
			Version: 1,
		})
	})
	if err != nil {
		s.logg.Error(s.logg.WithTransactionID(ctx, txn.ID.String()), "record settlement failure", err)
	}
}

// audit appends the compliance record for a staff review inside the same
// transaction as the state change.
func (s *service) audit(ctx context.Context, tx *gorm.DB, action enums.AdminAction, txn *models.Transaction, review Review) error {
	if !review.ActorRole.IsStaff() {
		return nil
	}
	record := &models.AuditRecord{
		ID:            uuid.New(),
		ActorUserID:   review.ActorID,
		ActorRole:     review.ActorRole,
		Action:        action,
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Reason:        review.Reason,
	}
	if err := tx.WithContext(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit record")
	}
	return nil
}

func (s *service) load(ctx context.Context, repo journal.Repository, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "transaction %s not found", id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventTransactionCreated,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   txn.ID,
		Data: payloads.TransactionCreatedEvent{
			TransactionID: txn.ID,
			AccountID:     txn.AccountID,
			Type:          txn.Type,
			Status:        txn.Status,
			Currency:      txn.Currency,
			Amount:        txn.Amount,
			Fee:           txn.Fee,
			Grams:         txn.Grams,
		},
		Version: 1,
	})
}

func validateCashParams(params CashParams) error {
	if params.AccountID == uuid.Nil || params.CreatedBy == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account and creator ids required")
	}
	if !params.Currency.IsCash() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency %q", params.Currency)
	}
	if !params.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func validateTradeParams(params TradeParams) error {
	if params.AccountID == uuid.Nil || params.CreatedBy == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account and creator ids required")
	}
	if !params.Currency.IsCash() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency %q", params.Currency)
	}
	if !params.Grams.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "grams must be greater than zero")
	}
	return nil
}
