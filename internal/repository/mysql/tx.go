package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/repository"
)

// txKey 事务连接在 context 中的键
type txKey struct{}

type txManager struct {
	db *gorm.DB
}

// NewTxManager 创建基于 GORM 事务的 TxManager
func NewTxManager(db *gorm.DB) repository.TxManager {
	return &txManager{db: db}
}

// WithTransaction 在一个数据库事务内执行 fn，事务连接通过 ctx 下发，
// 各仓储用 conn(ctx) 自动加入当前事务。
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 返回 ctx 中的事务连接，没有事务时退回默认连接
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
