package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return conn(ctx, r.db).Omit("Lines", "Address", "User").Create(o).Error
}

func (r *orderRepo) CreateLine(ctx context.Context, l *order.Line) error {
	return conn(ctx, r.db).Omit("Product").Create(l).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := conn(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Lines.Product").
		Preload("Lines.Product.Images").
		Preload("Address").
		Preload("User").
		First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := conn(ctx, r.db).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Address").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := conn(ctx, r.db).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Address").
		Preload("User").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	res := conn(ctx, r.db).Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
