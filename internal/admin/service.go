package admin

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

// Actor is the authenticated staff member performing a review action.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service is the privileged review surface: every action is gated on the
// actor's role capabilities and lands in the audit trail.
type Service interface {
	Review(ctx context.Context, action enums.AdminAction, transactionID uuid.UUID, actor Actor, reason string) (*models.Transaction, error)
}

type service struct {
	runner     settlement.TxRunner
	repo       journal.Repository
	settlement settlement.Service
	events     settlement.Events
	logg       *logger.Logger
}

// NewService wires the admin review surface.
func NewService(runner settlement.TxRunner, repo journal.Repository, settle settlement.Service, events settlement.Events, logg *logger.Logger) (Service, error) {
	if runner == nil || repo == nil || settle == nil || events == nil || logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin service missing dependencies")
	}
	return &service{
		runner:     runner,
		repo:       repo,
		settlement: settle,
		events:     events,
		logg:       logg,
	}, nil
}

func (s *service) Review(ctx context.Context, action enums.AdminAction, transactionID uuid.UUID, actor Actor, reason string) (*models.Transaction, error) {
	if !action.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid admin action %q", action)
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}

	permission, err := action.RequiredPermission()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve permission")
	}
	if !enums.RoleHasPermission(actor.Role, permission) {
		return nil, pkgerrors.Newf(pkgerrors.CodeForbidden, "role %s lacks %s", actor.Role, permission)
	}

	review := settlement.Review{ActorID: actor.UserID, ActorRole: actor.Role, Reason: reason}

	var txn *models.Transaction
	switch action {
	case enums.AdminActionProcess:
		txn, err = s.settlement.MarkProcessing(ctx, transactionID, review)
	case enums.AdminActionApprove:
		txn, err = s.settlement.Approve(ctx, transactionID, review)
	case enums.AdminActionReject:
		txn, err = s.settlement.Reject(ctx, transactionID, review)
	case enums.AdminActionCancel:
		txn, err = s.settlement.Cancel(ctx, transactionID, review)
	case enums.AdminActionRefund:
		txn, err = s.settlement.Refund(ctx, transactionID, review)
	case enums.AdminActionFlag:
		txn, err = s.setFlag(ctx, transactionID, actor, reason, true)
	case enums.AdminActionUnflag:
		txn, err = s.setFlag(ctx, transactionID, actor, reason, false)
	}
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"transaction_id": transactionID.String(),
		"action":         action.String(),
		"actor_role":     actor.Role.String(),
	})
	s.logg.Info(logCtx, "admin review action applied")
	return txn, nil
}

// setFlag toggles the compliance flag. Flagging never blocks settlement by
// itself; it routes the entry to the review queue.
func (s *service) setFlag(ctx context.Context, transactionID uuid.UUID, actor Actor, reason string, flagged bool) (*models.Transaction, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	var txn *models.Transaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, transactionID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "transaction %s not found", transactionID)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		var notes *string
		if reason != "" {
			notes = &reason
		}
		changed, err := repo.SetFlagged(ctx, transactionID, flagged, notes, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update flag")
		}
		if !changed {
			if flagged {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s is already flagged", transactionID)
			}
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "transaction %s is not flagged", transactionID)
		}

		action := enums.AdminActionFlag
		if !flagged {
			action = enums.AdminActionUnflag
		}
		record := &models.AuditRecord{
			ID:            uuid.New(),
			ActorUserID:   actor.UserID,
			ActorRole:     actor.Role,
			Action:        action,
			TransactionID: loaded.ID,
			AccountID:     loaded.AccountID,
			Reason:        reason,
		}
		if err := tx.WithContext(ctx).Create(record).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit record")
		}

		loaded.Flagged = flagged
		loaded.ReviewedBy = &actor.UserID
		if notes != nil {
			loaded.ReviewNotes = notes
		}
		txn = loaded

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFlagged,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   loaded.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: payloads.TransactionFlaggedEvent{
				TransactionID: loaded.ID,
				AccountID:     loaded.AccountID,
				Flagged:       flagged,
				Notes:         reason,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}
