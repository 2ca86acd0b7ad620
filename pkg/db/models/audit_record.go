package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// AuditRecord captures one privileged admin action. Append-only; written in
// the same transaction as the state change it describes.
type AuditRecord struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorUserID   uuid.UUID         `gorm:"column:actor_user_id;type:uuid;not null;index"`
	ActorRole     enums.UserRole    `gorm:"column:actor_role;type:user_role_enum;not null"`
	Action        enums.AdminAction `gorm:"column:action;type:admin_action_enum;not null"`
	TransactionID uuid.UUID         `gorm:"column:transaction_id;type:uuid;not null;index"`
	AccountID     uuid.UUID         `gorm:"column:account_id;type:uuid;not null"`
	Reason        string            `gorm:"column:reason;type:text;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
