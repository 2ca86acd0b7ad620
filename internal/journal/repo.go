package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	"github.com/zahabi-gold/zahabi-backend/pkg/pagination"
)

// Repository exposes persistence helpers for journal entries. Entries are
// append-only; the only mutable columns are status, review fields and the
// lifecycle timestamps, and those change only through guarded updates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByIDForAccount(ctx context.Context, id, accountID uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, params listQuery) ([]models.Transaction, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.TransactionStatus, to enums.TransactionStatus, updates map[string]any) (bool, error)
	SetFlagged(ctx context.Context, id uuid.UUID, flagged bool, notes *string, reviewerID uuid.UUID) (bool, error)
	FlagStale(ctx context.Context, id uuid.UUID, notes string) (bool, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
	FindRefundOf(ctx context.Context, originalID uuid.UUID) (*models.Transaction, error)
	Stats(ctx context.Context, from, to time.Time) ([]StatRow, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a journal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilters narrows a journal listing. Nil pointers mean "any".
type ListFilters struct {
	AccountID *uuid.UUID
	Types     []enums.TransactionType
	Statuses  []enums.TransactionStatus
	Currency  *enums.Asset
	Flagged   *bool
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	From      *time.Time
	To        *time.Time
}

type listQuery struct {
	filters ListFilters
	limit   int
	cursor  *pagination.Cursor
}

// StatRow is one aggregate bucket of the journal: per type and status.
type StatRow struct {
	Type        enums.TransactionType   `gorm:"column:type"`
	Status      enums.TransactionStatus `gorm:"column:status"`
	Count       int64                   `gorm:"column:count"`
	TotalAmount decimal.Decimal         `gorm:"column:total_amount"`
	TotalFees   decimal.Decimal         `gorm:"column:total_fees"`
	TotalGrams  decimal.Decimal         `gorm:"column:total_grams"`
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) FindByIDForAccount(ctx context.Context, id, accountID uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listQuery) ([]models.Transaction, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.limit)
	normalized := pagination.NormalizeLimit(params.limit)

	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	f := params.filters
	if f.AccountID != nil {
		query = query.Where("account_id = ?", *f.AccountID)
	}
	if len(f.Types) > 0 {
		query = query.Where("type IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.Currency != nil {
		query = query.Where("currency = ?", *f.Currency)
	}
	if f.Flagged != nil {
		query = query.Where("flagged = ?", *f.Flagged)
	}
	if f.MinAmount != nil {
		query = query.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("amount <= ?", *f.MaxAmount)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	if params.cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.cursor.CreatedAt, params.cursor.ID)
	}

	var rows []models.Transaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// UpdateStatus moves an entry between statuses only when the row is still in
// one of the expected source statuses. The compare-and-set keeps two racing
// reviewers from both winning the same transition.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.TransactionStatus, to enums.TransactionStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool, notes *string, reviewerID uuid.UUID) (bool, error) {
	updates := map[string]any{
		"flagged":     flagged,
		"reviewed_by": reviewerID,
	}
	if notes != nil {
		updates["review_notes"] = *notes
	}
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND flagged = ?", id, !flagged).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FlagStale raises the compliance flag on a still-pending entry without
// attributing the change to a reviewer. Used by the scheduled sweep; a row
// that already carries the flag or has left pending is skipped.
func (r *repositoryImpl) FlagStale(ctx context.Context, id uuid.UUID, notes string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ? AND flagged = ?", id, enums.TransactionStatusPending, false).
		Updates(map[string]any{
			"flagged":      true,
			"review_notes": notes,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.TransactionStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) FindRefundOf(ctx context.Context, originalID uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("original_transaction_id = ? AND type = ?", originalID, enums.TransactionTypeRefund).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repositoryImpl) Stats(ctx context.Context, from, to time.Time) ([]StatRow, error) {
	var rows []StatRow
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("type, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(fee), 0) AS total_fees, COALESCE(SUM(grams), 0) AS total_grams").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("type, status").
		Order("type, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
