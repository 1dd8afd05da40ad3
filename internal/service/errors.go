package service

import (
	"errors"
	"fmt"

	"github.com/example/goshop/internal/datamodels/order"
)

// 业务错误是一个封闭集合，HTTP 层只在边界把它们映射为状态码，
// 内部一律以类型化错误返回，不用异常式控制流。
var (
	// ErrForbidden 调用者不拥有目标资源
	ErrForbidden = errors.New("access denied")
	// ErrEmptyCart 购物车为空，无法下单
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError 请求内容不合法（数量非正、库存为负、slug 重复等），
// HTTP 层映射为 400
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError 实体不存在。按 ID 查找时填 ID，按 slug 等
// 业务键查找时填 Key。
type NotFoundError struct {
	Entity string
	ID     int64
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// InsufficientStockError 库存不足，携带商品信息。
// 结账预检与库存台账自身的扣减守卫返回同一种错误（历史上台账侧
// 曾是独立的 Conflict，这里按同一语义统一）。
type InsufficientStockError struct {
	ProductID int64
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product: %s", e.Name)
}

// InvalidTransitionError 非法的订单状态转移，消息同时指明两端状态
type InvalidTransitionError struct {
	From order.Status
	To   order.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
