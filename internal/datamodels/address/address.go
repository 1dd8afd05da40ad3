package address

import (
	"context"
	"time"
)

// Address 收货地址模型，归属于单个用户
type Address struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"index;not null" json:"user_id"`
	FullName   string    `gorm:"size:128;not null" json:"full_name"`
	Phone      string    `gorm:"size:32" json:"phone"`
	Line1      string    `gorm:"size:255;not null" json:"line1"`
	Line2      string    `gorm:"size:255" json:"line2"`
	City       string    `gorm:"size:64;not null" json:"city"`
	State      string    `gorm:"size:64" json:"state"`
	PostalCode string    `gorm:"size:16" json:"postal_code"`
	Country    string    `gorm:"size:64;not null" json:"country"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository 地址仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Address, error)
	ListByUser(ctx context.Context, userID int64) ([]*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	// Delete 删除地址；引用它的订单 address_id 置为 NULL（不级联删除订单）
	Delete(ctx context.Context, id int64) error
}
