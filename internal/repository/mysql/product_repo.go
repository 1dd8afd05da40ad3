package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := conn(ctx, r.db).Preload("Images").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	if err := conn(ctx, r.db).Preload("Images").
		Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f product.ListFilter) ([]*product.Product, error) {
	query := conn(ctx, r.db).Preload("Images")
	if f.OnlineOnly {
		query = query.Where("status = ?", product.StatusOnline)
	}
	if f.CategoryID > 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+f.Keyword+"%")
	}
	var list []*product.Product
	if err := query.Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return conn(ctx, r.db).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return conn(ctx, r.db).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return conn(ctx, r.db).Delete(&product.Product{}, id).Error
}

// DecrementStock 单条带守卫的 UPDATE，stock >= qty 才会命中，
// 并发下由行锁天然串行，不会扣成负数。
func (r *productRepo) DecrementStock(ctx context.Context, id, qty int64) error {
	res := conn(ctx, r.db).Model(&product.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 区分商品不存在与库存不足
		var count int64
		if err := conn(ctx, r.db).Model(&product.Product{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return product.ErrInsufficientStock
	}
	return nil
}

// RestoreStock 无条件回加库存，不设上限
func (r *productRepo) RestoreStock(ctx context.Context, id, qty int64) error {
	res := conn(ctx, r.db).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetStock 管理端覆写库存。MySQL 对值未变化的 UPDATE 返回 0 行，
// 所以不能用影响行数判断存在性，先查再写。
func (r *productRepo) SetStock(ctx context.Context, id, qty int64) error {
	var count int64
	if err := conn(ctx, r.db).Model(&product.Product{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return conn(ctx, r.db).Model(&product.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", qty).Error
}

func (r *productRepo) AddImage(ctx context.Context, img *product.Image) error {
	return conn(ctx, r.db).Create(img).Error
}

func (r *productRepo) RemoveImage(ctx context.Context, productID, imageID int64) error {
	res := conn(ctx, r.db).
		Where("id = ? AND product_id = ?", imageID, productID).
		Delete(&product.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
