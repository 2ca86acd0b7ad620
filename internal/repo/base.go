package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the GORM connection shared by domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase binds a repository foundation to the provided connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx, or the raw connection when ctx
// is nil.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
