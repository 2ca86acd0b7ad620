package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// Account is the wallet owned by a user. Balance state lives in the
// per-asset Balance rows; the account itself only carries lifecycle fields.
type Account struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Status    enums.AccountStatus `gorm:"column:status;type:account_status_enum;not null;default:'active'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// Balance holds one asset dimension of an account's wallet. Rows are the
// unit of locking for ledger mutations; Version increments on every write.
type Balance struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID       `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_balances_account_asset"`
	Asset     enums.Asset     `gorm:"column:asset;type:text;not null;uniqueIndex:ux_balances_account_asset"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(20,6);not null"`
	Version   int64           `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy plural form used by the migrations.
func (Balance) TableName() string {
	return "account_balances"
}
