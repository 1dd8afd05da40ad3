package cart

import (
	"context"
	"time"

	"github.com/example/goshop/internal/datamodels/product"
)

// Cart 购物车模型，与用户一一对应，首次访问时惰性创建。
// 下单成功后只清空购物车行，购物车本身保留复用。
type Cart struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Lines     []Line    `gorm:"foreignKey:CartID" json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line 购物车行：同一购物车内每个商品至多一行
type Line struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	CartID    int64            `gorm:"index:idx_cart_product,unique;not null" json:"cart_id"`
	ProductID int64            `gorm:"index:idx_cart_product,unique;not null" json:"product_id"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	Product   *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Repository 购物车仓储接口
type Repository interface {
	// GetByUser 查询用户购物车（带行和商品），不存在时返回仓储的未找到错误
	GetByUser(ctx context.Context, userID int64) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	GetLine(ctx context.Context, cartID, productID int64) (*Line, error)
	GetLineByID(ctx context.Context, cartID, lineID int64) (*Line, error)
	SaveLine(ctx context.Context, l *Line) error
	DeleteLine(ctx context.Context, cartID, lineID int64) error
	// ClearLines 删除购物车所有行，购物车行记录之外不动
	ClearLines(ctx context.Context, cartID int64) error
}
