package persistence

import (
	"context"

	"github.com/cargomesh/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// dbFromContext returns the transaction carried by ctx, or the base
// connection when the caller runs outside a unit of work
func dbFromContext(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return base
}

// gormUnitOfWork runs application operations inside a single database
// transaction. The transaction rides on the context; repositories pick
// it up through dbFromContext, so the same repository works both inside
// and outside a unit of work. Nested Execute calls join the transaction
// already on the context.
type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a UnitOfWork backed by gorm transactions
func NewUnitOfWork(database *Database) shared.UnitOfWork {
	return &gormUnitOfWork{db: database.DB}
}

func (u *gormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
