package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/ledger"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

// Service manages wallet account lifecycle and balance reads.
type Service interface {
	// Open creates the wallet for a new user inside the caller's
	// transaction, seeding a zero balance row per supported asset.
	Open(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error)
	Balances(ctx context.Context, accountID uuid.UUID) (ledger.Balances, error)
	Balance(ctx context.Context, accountID uuid.UUID, asset enums.Asset) (decimal.Decimal, error)
	Suspend(ctx context.Context, accountID uuid.UUID) error
	Reactivate(ctx context.Context, accountID uuid.UUID) error
	Deactivate(ctx context.Context, accountID uuid.UUID) error
}

type service struct {
	runner settlement.TxRunner
	repo   Repository
	engine *ledger.Engine
	events settlement.Events
	logg   *logger.Logger
}

// NewService wires the accounts service.
func NewService(runner settlement.TxRunner, repo Repository, engine *ledger.Engine, events settlement.Events, logg *logger.Logger) (Service, error) {
	if runner == nil || repo == nil || engine == nil || events == nil || logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "accounts service missing dependencies")
	}
	return &service{runner: runner, repo: repo, engine: engine, events: events, logg: logg}, nil
}

func (s *service) Open(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Account, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "account open requires a database transaction")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	account := &models.Account{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.AccountStatusActive,
	}
	if err := s.repo.WithTx(tx).Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	if err := ledger.SeedBalances(ctx, tx, account.ID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "account %s not found", id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	account, err := s.repo.FindByUserID(ctx, userID)
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "no account for user %s", userID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func (s *service) Balances(ctx context.Context, accountID uuid.UUID) (ledger.Balances, error) {
	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var balances ledger.Balances
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		var readErr error
		balances, readErr = s.engine.AllBalances(ctx, tx, account.ID)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID, asset enums.Asset) (decimal.Decimal, error) {
	if !asset.IsValid() {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid asset %q", asset)
	}
	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	var amount decimal.Decimal
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		var readErr error
		amount, readErr = s.engine.GetBalance(ctx, tx, account.ID, asset)
		return readErr
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (s *service) Suspend(ctx context.Context, accountID uuid.UUID) error {
	return s.transition(ctx, accountID,
		[]enums.AccountStatus{enums.AccountStatusActive},
		enums.AccountStatusSuspended, nil)
}

func (s *service) Reactivate(ctx context.Context, accountID uuid.UUID) error {
	return s.transition(ctx, accountID,
		[]enums.AccountStatus{enums.AccountStatusSuspended},
		enums.AccountStatusActive, nil)
}

// Deactivate permanently closes an account. Balances are retained for audit;
// the ledger engine refuses further mutations.
func (s *service) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	return s.transition(ctx, accountID,
		[]enums.AccountStatus{enums.AccountStatusActive, enums.AccountStatusSuspended},
		enums.AccountStatusDeactivated,
		func(ctx context.Context, tx *gorm.DB, account *models.Account) error {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAccountDeactivated,
				AggregateType: enums.AggregateAccount,
				AggregateID:   account.ID,
				Data: payloads.AccountDeactivatedEvent{
					AccountID:     account.ID,
					UserID:        account.UserID,
					DeactivatedAt: time.Now().UTC(),
				},
				Version: 1,
			})
		})
}

func (s *service) transition(ctx context.Context, accountID uuid.UUID, from []enums.AccountStatus, to enums.AccountStatus, after func(context.Context, *gorm.DB, *models.Account) error) error {
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.FindByID(ctx, accountID)
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "account %s not found", accountID)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
		}

		moved, err := repo.UpdateStatus(ctx, accountID, from, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account status")
		}
		if !moved {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "account %s cannot move from %s to %s", accountID, account.Status, to)
		}
		account.Status = to
		if after != nil {
			return after(ctx, tx, account)
		}
		return nil
	})
}
