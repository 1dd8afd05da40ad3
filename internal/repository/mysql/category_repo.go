package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/category"
)

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	var c category.Category
	if err := conn(ctx, r.db).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	var c category.Category
	if err := conn(ctx, r.db).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	var list []*category.Category
	if err := conn(ctx, r.db).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *category.Category) error {
	return conn(ctx, r.db).Create(c).Error
}

func (r *categoryRepo) Update(ctx context.Context, c *category.Category) error {
	return conn(ctx, r.db).Save(c).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	return conn(ctx, r.db).Delete(&category.Category{}, id).Error
}
