package database

import (
	"context"

	"bloom-monitor/repositories/base"

	"gorm.io/gorm"
)

// UnitOfWorkInterface abstracts transaction handling from the business layer.
type UnitOfWorkInterface interface {
	Begin(ctx context.Context) *gorm.DB
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
	// Do runs fn in a transaction, committing when fn returns nil.
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *gorm.DB) UnitOfWorkInterface {
	return &unitOfWork{db: db}
}

// Begin starts a new transaction bound to ctx.
func (uow *unitOfWork) Begin(ctx context.Context) *gorm.DB {
	return uow.db.WithContext(ctx).Begin()
}

// Commit commits the transaction.
func (uow *unitOfWork) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

// Rollback rolls back a transaction that has not failed to begin.
func (uow *unitOfWork) Rollback(tx *gorm.DB) {
	if tx.Error == nil {
		tx.Rollback()
	}
}

// Do rolls back when fn fails or panics. Begin and commit failures come back
// as TransactionError.
func (uow *unitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := uow.Begin(ctx)
	if tx.Error != nil {
		return base.NewTransactionError("begin", "could not start transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			uow.Rollback(tx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		uow.Rollback(tx)
		return err
	}
	if err := uow.Commit(tx); err != nil {
		return base.NewTransactionError("commit", "could not commit transaction", err)
	}
	return nil
}
