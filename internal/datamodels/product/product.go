package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock 由 DecrementStock 在库存不足时返回，
// 服务层负责补充商品信息后向上抛出。
var ErrInsufficientStock = errors.New("insufficient stock")

// 商品状态
const (
	StatusOffline = 0 // 下架
	StatusOnline  = 1 // 在售
)

// Product 商品模型，价格使用 decimal(10,2) 保证金额精度
type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	CategoryID  int64           `gorm:"index;not null" json:"category_id"`
	Name        string          `gorm:"size:128;not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;size:160;not null" json:"slug"`
	Description string          `gorm:"size:1024" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	Status      int             `gorm:"index;not null;default:1" json:"status"`
	Images      []Image         `gorm:"foreignKey:ProductID" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Image 商品图片
type Image struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	ProductID int64  `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"size:512;not null" json:"url"`
	Alt       string `gorm:"size:255" json:"alt"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// ListFilter 商品列表筛选条件
type ListFilter struct {
	CategoryID int64  // 0 表示不限分类
	Keyword    string // 名称模糊匹配
	OnlineOnly bool   // 前台只看在售商品
}

// Repository 商品仓储接口。库存的三个修改入口
// （DecrementStock/RestoreStock/SetStock）是库存台账唯一许可的变更路径。
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error

	// DecrementStock 原子扣减库存，库存不足时返回 ErrInsufficientStock
	DecrementStock(ctx context.Context, id, qty int64) error
	// RestoreStock 无条件回补库存（取消订单的补偿动作）
	RestoreStock(ctx context.Context, id, qty int64) error
	// SetStock 管理端直接覆写库存
	SetStock(ctx context.Context, id, qty int64) error

	AddImage(ctx context.Context, img *Image) error
	RemoveImage(ctx context.Context, productID, imageID int64) error
}
