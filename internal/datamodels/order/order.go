package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
)

// Order 订单模型。Total 与订单行价格在创建时刻定格，
// 后续商品调价不会回写（历史快照语义）。
type Order struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	UserID    int64            `gorm:"index;not null" json:"user_id"`
	AddressID *int64           `gorm:"index" json:"address_id"` // 地址删除后置 NULL
	Status    Status           `gorm:"size:16;index;not null" json:"status"`
	Total     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total"`
	Lines     []Line           `gorm:"foreignKey:OrderID" json:"lines"`
	Address   *address.Address `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	User      *user.User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Line 订单行：下单时刻商品价格与数量的不可变快照
type Line struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	OrderID   int64            `gorm:"index;not null" json:"order_id"`
	ProductID int64            `gorm:"index;not null" json:"product_id"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"` // 成交单价
	Product   *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Subtotal 行小计 = 成交单价 × 数量
func (l *Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	CreateLine(ctx context.Context, l *Line) error
	// GetByID 返回订单及其行、商品（含图片）、地址、用户
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}
