package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/order"
)

type addressRepo struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepo{db: db}
}

func (r *addressRepo) GetByID(ctx context.Context, id int64) (*address.Address, error) {
	var a address.Address
	if err := conn(ctx, r.db).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *addressRepo) ListByUser(ctx context.Context, userID int64) ([]*address.Address, error) {
	var list []*address.Address
	if err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *addressRepo) Create(ctx context.Context, a *address.Address) error {
	return conn(ctx, r.db).Create(a).Error
}

func (r *addressRepo) Update(ctx context.Context, a *address.Address) error {
	return conn(ctx, r.db).Save(a).Error
}

// Delete 删除地址并把引用它的订单 address_id 置 NULL（set null 语义，
// 订单本身永不级联删除）。
func (r *addressRepo) Delete(ctx context.Context, id int64) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order.Order{}).
			Where("address_id = ?", id).
			UpdateColumn("address_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&address.Address{}, id).Error
	})
}
