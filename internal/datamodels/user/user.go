package user

import (
	"context"
	"time"
)

// 用户角色
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // 已加密密码
	Salt      string    `gorm:"size:64" json:"-"`
	Role      string    `gorm:"size:16;index;not null;default:customer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	ListAll(ctx context.Context) ([]*User, error)
}
