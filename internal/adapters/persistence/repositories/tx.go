package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager scopes a gorm transaction to a context so every repository call
// made inside the use case reads its own writes.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTransaction runs fn inside a transaction carried on the context.
// Nested calls join the caller's transaction rather than opening a new one.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFrom(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return tx
}

// conn resolves the DB handle for a repository call: the context transaction
// when one is open, otherwise the base connection.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
