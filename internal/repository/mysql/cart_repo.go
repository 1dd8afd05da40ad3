package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/repository"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := conn(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Lines.Product").
		Preload("Lines.Product.Images").
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, c *cart.Cart) error {
	return conn(ctx, r.db).Create(c).Error
}

func (r *cartRepo) GetLine(ctx context.Context, cartID, productID int64) (*cart.Line, error) {
	var l cart.Line
	if err := conn(ctx, r.db).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *cartRepo) GetLineByID(ctx context.Context, cartID, lineID int64) (*cart.Line, error) {
	var l cart.Line
	if err := conn(ctx, r.db).
		Preload("Product").
		Where("id = ? AND cart_id = ?", lineID, cartID).
		First(&l).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *cartRepo) SaveLine(ctx context.Context, l *cart.Line) error {
	return conn(ctx, r.db).Omit("Product").Save(l).Error
}

func (r *cartRepo) DeleteLine(ctx context.Context, cartID, lineID int64) error {
	res := conn(ctx, r.db).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&cart.Line{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearLines 清空购物车行，购物车行之外的记录保留复用
func (r *cartRepo) ClearLines(ctx context.Context, cartID int64) error {
	return conn(ctx, r.db).
		Where("cart_id = ?", cartID).
		Delete(&cart.Line{}).Error
}
