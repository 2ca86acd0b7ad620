package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// PriceSnapshot is a point-in-time gold price per gram in one currency,
// written by the ingestion job and read-only to the ledger. Completed gold
// trades reference the snapshot used so recorded grams stay auditable.
type PriceSnapshot struct {
	ID       uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Currency enums.Asset `gorm:"column:currency;type:text;not null;index:ix_price_snapshots_currency_time"`

	Open  decimal.Decimal `gorm:"column:open;type:numeric(20,6);not null"`
	High  decimal.Decimal `gorm:"column:high;type:numeric(20,6);not null"`
	Low   decimal.Decimal `gorm:"column:low;type:numeric(20,6);not null"`
	Close decimal.Decimal `gorm:"column:close;type:numeric(20,6);not null"`

	Interval string `gorm:"column:interval;not null;default:'1m'"`
	Source   string `gorm:"column:source;not null"`
	Realtime bool   `gorm:"column:realtime;not null;default:true"`

	QuotedAt  time.Time `gorm:"column:quoted_at;not null;index:ix_price_snapshots_currency_time,sort:desc"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
