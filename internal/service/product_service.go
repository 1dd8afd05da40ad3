package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository"
)

const catalogCacheKey = "catalog:products:%d:%s" // categoryID, keyword

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 从名称生成 slug
func Slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// ProductService 商品目录服务。前台列表走 Redis 缓存（短 TTL），
// 管理端写操作直接清缓存；库存随结账的变化只靠 TTL 过期刷新。
type ProductService struct {
	repo         product.Repository
	categoryRepo category.Repository
	redis        radix.Client
	cacheTTL     int
}

// NewProductService 创建商品服务。redis 可为 nil（不启用缓存）。
func NewProductService(repo product.Repository, categoryRepo category.Repository, redis radix.Client, cacheTTLSeconds int) *ProductService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		redis:        redis,
		cacheTTL:     cacheTTLSeconds,
	}
}

// ListOnline 前台在售商品列表，带缓存
func (s *ProductService) ListOnline(ctx context.Context, categoryID int64, keyword string) ([]*product.Product, error) {
	key := fmt.Sprintf(catalogCacheKey, categoryID, keyword)
	if s.redis != nil {
		var raw string
		if err := s.redis.Do(radix.Cmd(&raw, "GET", key)); err != nil {
			GetMonitor().RecordRedisError()
		} else if raw != "" {
			var cached []*product.Product
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			// 缓存损坏则删掉走数据库
			_ = s.redis.Do(radix.Cmd(nil, "DEL", key))
		}
	}

	list, err := s.repo.List(ctx, product.ListFilter{
		CategoryID: categoryID,
		Keyword:    keyword,
		OnlineOnly: true,
	})
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if body, err := json.Marshal(list); err == nil {
			if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", key, s.cacheTTL, body)); err != nil {
				GetMonitor().RecordRedisError()
			}
		}
	}
	return list, nil
}

// ListAll 管理端全部商品，不走缓存
func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.List(ctx, product.ListFilter{})
}

// GetByID 按 ID 查询商品
func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: id}
		}
		return nil, err
	}
	return p, nil
}

// GetBySlug 按 slug 查询商品（前台详情页）
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", Key: slug}
		}
		return nil, err
	}
	return p, nil
}

// Create 新建商品：分类必须存在，slug 缺省时从名称生成且必须唯一
func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	if _, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "Category", ID: p.CategoryID}
		}
		return err
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if _, err := s.repo.GetBySlug(ctx, p.Slug); err == nil {
		return &ValidationError{Msg: "product with this slug already exists"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	if p.CategoryID > 0 {
		if _, err := s.categoryRepo.GetByID(ctx, p.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Entity: "Category", ID: p.CategoryID}
			}
			return err
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// AddImage 给商品追加图片
func (s *ProductService) AddImage(ctx context.Context, productID int64, img *product.Image) error {
	if _, err := s.GetByID(ctx, productID); err != nil {
		return err
	}
	img.ProductID = productID
	if err := s.repo.AddImage(ctx, img); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// RemoveImage 删除商品图片
func (s *ProductService) RemoveImage(ctx context.Context, productID, imageID int64) error {
	if err := s.repo.RemoveImage(ctx, productID, imageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: "Image", ID: imageID}
		}
		return err
	}
	s.invalidateCache()
	return nil
}

// invalidateCache 清掉目录缓存。键带筛选参数，这里用 SCAN 逐批删除。
func (s *ProductService) invalidateCache() {
	if s.redis == nil {
		return
	}
	scanner := radix.NewScanner(s.redis, radix.ScanOpts{Command: "SCAN", Pattern: "catalog:products:*"})
	var key string
	for scanner.Next(&key) {
		_ = s.redis.Do(radix.Cmd(nil, "DEL", key))
	}
	if err := scanner.Close(); err != nil {
		GetMonitor().RecordRedisError()
		zap.L().Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
