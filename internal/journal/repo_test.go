package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

func setupJournalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL,
  amount TEXT NOT NULL,
  fee TEXT NOT NULL,
  net_amount TEXT NOT NULL,
  grams TEXT NOT NULL,
  price_per_gram TEXT NOT NULL,
  price_snapshot_id TEXT,
  original_transaction_id TEXT,
  flagged INTEGER NOT NULL DEFAULT 0,
  failure_reason TEXT,
  review_notes TEXT,
  created_by TEXT NOT NULL,
  reviewed_by TEXT,
  processing_at DATETIME,
  completed_at DATETIME,
  failed_at DATETIME,
  cancelled_at DATETIME,
  refunded_at DATETIME,
  applied_at DATETIME,
  reversed_at DATETIME,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

type seedOpts struct {
	accountID uuid.UUID
	txType    enums.TransactionType
	status    enums.TransactionStatus
	amount    string
	flagged   bool
	createdAt time.Time
}

func seedTxn(t *testing.T, db *gorm.DB, opts seedOpts) *models.Transaction {
	t.Helper()

	if opts.accountID == uuid.Nil {
		opts.accountID = uuid.New()
	}
	if opts.amount == "" {
		opts.amount = "100.00"
	}
	if opts.createdAt.IsZero() {
		opts.createdAt = time.Now().UTC()
	}
	txn := &models.Transaction{
		ID:        uuid.New(),
		AccountID: opts.accountID,
		Type:      opts.txType,
		Status:    opts.status,
		Currency:  enums.AssetUSD,
		Amount:    decimal.RequireFromString(opts.amount),
		Fee:       decimal.Zero,
		NetAmount: decimal.RequireFromString(opts.amount),
		Flagged:   opts.flagged,
		CreatedBy: opts.accountID,
		CreatedAt: opts.createdAt,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	accountID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		seedTxn(t, db, seedOpts{
			accountID: accountID,
			txType:    enums.TransactionTypeDeposit,
			status:    enums.TransactionStatusCompleted,
			createdAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	seedTxn(t, db, seedOpts{
		accountID: accountID,
		txType:    enums.TransactionTypeWithdrawal,
		status:    enums.TransactionStatusPending,
		createdAt: base.Add(10 * time.Minute),
	})
	// Another account's entry must never leak into the listing.
	seedTxn(t, db, seedOpts{
		txType: enums.TransactionTypeDeposit,
		status: enums.TransactionStatusCompleted,
	})

	rows, next, err := repo.List(ctx, listQuery{
		filters: ListFilters{
			AccountID: &accountID,
			Types:     []enums.TransactionType{enums.TransactionTypeDeposit},
		},
		limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)
	for _, row := range rows {
		assert.Equal(t, accountID, row.AccountID)
		assert.Equal(t, enums.TransactionTypeDeposit, row.Type)
	}
	// Newest first.
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	rest, final, err := repo.List(ctx, listQuery{
		filters: ListFilters{
			AccountID: &accountID,
			Types:     []enums.TransactionType{enums.TransactionTypeDeposit},
		},
		limit:  2,
		cursor: next,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, final)
}

func TestListAmountAndFlaggedFilters(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	accountID := uuid.New()

	seedTxn(t, db, seedOpts{accountID: accountID, txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted, amount: "50.00"})
	big := seedTxn(t, db, seedOpts{accountID: accountID, txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted, amount: "5000.00", flagged: true})

	min := decimal.RequireFromString("1000.00")
	flagged := true
	rows, _, err := repo.List(ctx, listQuery{
		filters: ListFilters{AccountID: &accountID, MinAmount: &min, Flagged: &flagged},
		limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, big.ID, rows[0].ID)
}

func TestUpdateStatusIsGuarded(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	txn := seedTxn(t, db, seedOpts{txType: enums.TransactionTypeWithdrawal, status: enums.TransactionStatusPending})

	now := time.Now().UTC()
	moved, err := repo.UpdateStatus(ctx, txn.ID,
		[]enums.TransactionStatus{enums.TransactionStatusPending},
		enums.TransactionStatusProcessing,
		map[string]any{"processing_at": now})
	require.NoError(t, err)
	assert.True(t, moved)

	// A second actor races the same transition and must lose.
	moved, err = repo.UpdateStatus(ctx, txn.ID,
		[]enums.TransactionStatus{enums.TransactionStatusPending},
		enums.TransactionStatusCancelled,
		nil)
	require.NoError(t, err)
	assert.False(t, moved)

	reloaded, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusProcessing, reloaded.Status)
	assert.NotNil(t, reloaded.ProcessingAt)
}

func TestSetFlaggedTogglesOnce(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	txn := seedTxn(t, db, seedOpts{txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted})
	reviewer := uuid.New()
	notes := "large transfer pattern"

	changed, err := repo.SetFlagged(ctx, txn.ID, true, &notes, reviewer)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.SetFlagged(ctx, txn.ID, true, nil, reviewer)
	require.NoError(t, err)
	assert.False(t, changed, "flagging an already-flagged entry is a no-op")

	reloaded, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Flagged)
	require.NotNil(t, reloaded.ReviewNotes)
	assert.Equal(t, notes, *reloaded.ReviewNotes)
}

func TestFlagStaleOnlyTouchesPending(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := seedTxn(t, db, seedOpts{txType: enums.TransactionTypeWithdrawal, status: enums.TransactionStatusPending})
	settled := seedTxn(t, db, seedOpts{txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted})

	changed, err := repo.FlagStale(ctx, pending.ID, "pending for more than 48h")
	require.NoError(t, err)
	assert.True(t, changed)

	// Re-running the sweep over an already-flagged entry is a no-op.
	changed, err = repo.FlagStale(ctx, pending.ID, "pending for more than 48h")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.FlagStale(ctx, settled.ID, "pending for more than 48h")
	require.NoError(t, err)
	assert.False(t, changed, "settled entries are out of sweep scope")

	reloaded, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Flagged)
	assert.Nil(t, reloaded.ReviewedBy)
	require.NotNil(t, reloaded.ReviewNotes)
	assert.Equal(t, "pending for more than 48h", *reloaded.ReviewNotes)
}

func TestFindPendingBefore(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := seedTxn(t, db, seedOpts{
		txType:    enums.TransactionTypeWithdrawal,
		status:    enums.TransactionStatusPending,
		createdAt: time.Now().UTC().Add(-48 * time.Hour),
	})
	seedTxn(t, db, seedOpts{txType: enums.TransactionTypeWithdrawal, status: enums.TransactionStatusPending})
	seedTxn(t, db, seedOpts{
		txType:    enums.TransactionTypeDeposit,
		status:    enums.TransactionStatusCompleted,
		createdAt: time.Now().UTC().Add(-48 * time.Hour),
	})

	rows, err := repo.FindPendingBefore(ctx, time.Now().UTC().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		require.Equal(t, enums.TransactionStatusPending, row.Status)
		require.True(t, row.CreatedAt.Before(time.Now().UTC().Add(-24*time.Hour)))
		if row.ID == stale.ID {
			found = true
		}
	}
	assert.True(t, found, "stale pending entry missing from sweep")
}

func TestStatsAggregatesByTypeAndStatus(t *testing.T) {
	db := setupJournalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// A fixed historical window keeps rows seeded by other tests out of the
	// aggregation, since the table is shared across the package.
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	inWindow := from.Add(time.Hour)

	seedTxn(t, db, seedOpts{txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted, amount: "100.00", createdAt: inWindow})
	seedTxn(t, db, seedOpts{txType: enums.TransactionTypeDeposit, status: enums.TransactionStatusCompleted, amount: "200.00", createdAt: inWindow})
	seedTxn(t, db, seedOpts{txType: enums.TransactionTypeWithdrawal, status: enums.TransactionStatusPending, amount: "75.00", createdAt: inWindow})
	rows, err := repo.Stats(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byType := map[enums.TransactionType]StatRow{}
	for _, row := range rows {
		byType[row.Type] = row
	}
	deposits := byType[enums.TransactionTypeDeposit]
	assert.Equal(t, int64(2), deposits.Count)
	assert.True(t, deposits.TotalAmount.Equal(decimal.RequireFromString("300.00")),
		"got %s", deposits.TotalAmount)
	withdrawals := byType[enums.TransactionTypeWithdrawal]
	assert.Equal(t, int64(1), withdrawals.Count)
}
