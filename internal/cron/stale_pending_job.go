package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox/payloads"
)

const (
	defaultStalePendingAge = 48 * time.Hour
	stalePendingBatchSize  = 200
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type pendingReader interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
}

type staleFlagRepo interface {
	FlagStale(ctx context.Context, id uuid.UUID, notes string) (bool, error)
}

type staleFlagRepoFactory func(tx *gorm.DB) staleFlagRepo

func defaultStaleFlagRepo(tx *gorm.DB) staleFlagRepo {
	return journal.NewRepository(tx)
}

// StalePendingJobParams configure the sweep that surfaces forgotten manual
// reviews.
type StalePendingJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	PendingReader pendingReader
	Outbox        outboxEmitter
	RepoFactory   staleFlagRepoFactory
	MaxAge        time.Duration
}

// NewStalePendingJob builds the job that flags pending transactions older
// than the configured age so they show up in the admin review queue.
func NewStalePendingJob(params StalePendingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultStaleFlagRepo
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStalePendingAge
	}
	return &stalePendingJob{
		logg:        params.Logger,
		db:          params.DB,
		pending:     params.PendingReader,
		outbox:      params.Outbox,
		repoFactory: repoFactory,
		maxAge:      maxAge,
		now:         time.Now,
	}, nil
}

type stalePendingJob struct {
	logg        *logger.Logger
	db          txRunner
	pending     pendingReader
	outbox      outboxEmitter
	repoFactory staleFlagRepoFactory
	maxAge      time.Duration
	now         func() time.Time
}

func (j *stalePendingJob) Name() string { return "stale-pending-sweep" }

func (j *stalePendingJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	rows, err := j.pending.FindPendingBefore(ctx, cutoff, stalePendingBatchSize)
	if err != nil {
		return fmt.Errorf("query stale pending transactions: %w", err)
	}

	var errs []error
	flagged := 0
	for _, txn := range rows {
		if txn.Flagged {
			continue
		}
		if err := j.flagTransaction(ctx, txn); err != nil {
			errs = append(errs, fmt.Errorf("flag transaction %s: %w", txn.ID, err))
			continue
		}
		flagged++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"scanned": len(rows),
		"flagged": flagged,
	})
	j.logg.Info(logCtx, "stale pending sweep complete")
	return multierr.Combine(errs...)
}

func (j *stalePendingJob) flagTransaction(ctx context.Context, txn models.Transaction) error {
	notes := fmt.Sprintf("pending for more than %s without review", j.maxAge)
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		changed, err := repo.FlagStale(ctx, txn.ID, notes)
		if err != nil {
			return err
		}
		// Entry settled or was flagged by hand since the scan; nothing to emit.
		if !changed {
			return nil
		}
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFlagged,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Version:       1,
			OccurredAt:    j.now().UTC(),
			Data: payloads.TransactionFlaggedEvent{
				TransactionID: txn.ID,
				AccountID:     txn.AccountID,
				Flagged:       true,
				Notes:         notes,
			},
		})
	})
}
