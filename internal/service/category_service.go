package service

import (
	"context"
	"errors"

	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/repository"
)

// CategoryService 分类管理
type CategoryService struct {
	repo category.Repository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo category.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) ListAll(ctx context.Context) ([]*category.Category, error) {
	return s.repo.ListAll(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Category", ID: id}
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Category", Key: slug}
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, c *category.Category) error {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if _, err := s.repo.GetBySlug(ctx, c.Slug); err == nil {
		return &ValidationError{Msg: "category with this slug already exists"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c *category.Category) error {
	return s.repo.Update(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
