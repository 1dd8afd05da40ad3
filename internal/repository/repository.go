package repository

import (
	"context"
	"errors"
)

// ErrNotFound 实体不存在时由各仓储实现返回
var ErrNotFound = errors.New("record not found")

// TxManager 事务抽象：fn 内通过 ctx 传递的连接执行的所有仓储调用
// 在同一事务中提交或回滚。结账的建单、写订单行并扣库存、清空购物车
// 必须整体运行在一个事务内。
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
