package pricing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/zahabi-gold/zahabi-backend/internal/repo"
	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// Repository exposes price snapshot persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a pricing repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Insert stores a snapshot row.
func (r *Repository) Insert(ctx context.Context, snapshot *models.PriceSnapshot) error {
	return r.DB(ctx).Create(snapshot).Error
}

// LatestByCurrency returns the most recent snapshot for the currency.
func (r *Repository) LatestByCurrency(ctx context.Context, currency enums.Asset) (*models.PriceSnapshot, error) {
	var snapshot models.PriceSnapshot
	err := r.DB(ctx).
		Where("currency = ?", currency).
		Order("quoted_at DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// History returns snapshots for a currency within [from, to), newest first.
func (r *Repository) History(ctx context.Context, currency enums.Asset, from, to time.Time, limit int) ([]models.PriceSnapshot, error) {
	var snapshots []models.PriceSnapshot
	q := r.DB(ctx).
		Where("currency = ? AND quoted_at >= ? AND quoted_at < ?", currency, from, to).
		Order("quoted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
