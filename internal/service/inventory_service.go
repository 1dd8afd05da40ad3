package service

import (
	"context"
	"errors"

	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository"
)

// InventoryService 库存台账：每个商品的库存是一个非负整数，
// 这里的三个方法是仅有的合法变更入口。
type InventoryService struct {
	productRepo product.Repository
}

// NewInventoryService 创建库存服务
func NewInventoryService(productRepo product.Repository) *InventoryService {
	return &InventoryService{productRepo: productRepo}
}

// Decrement 扣减库存，不足时返回 InsufficientStockError（带商品名）。
// 底层是单条带守卫的 UPDATE，并发扣减由行锁串行。
func (s *InventoryService) Decrement(ctx context.Context, productID, qty int64) (*product.Product, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: productID}
		}
		return nil, err
	}
	if err := s.productRepo.DecrementStock(ctx, productID, qty); err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: productID}
		}
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

// Restore 无条件回补库存（取消订单的补偿动作），不做上限检查
func (s *InventoryService) Restore(ctx context.Context, productID, qty int64) (*product.Product, error) {
	if err := s.productRepo.RestoreStock(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: productID}
		}
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}

// SetAbsolute 管理端覆写库存，qty 必须非负
func (s *InventoryService) SetAbsolute(ctx context.Context, productID, qty int64) (*product.Product, error) {
	if qty < 0 {
		return nil, &ValidationError{Msg: "stock must be non-negative"}
	}
	if err := s.productRepo.SetStock(ctx, productID, qty); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: productID}
		}
		return nil, err
	}
	return s.productRepo.GetByID(ctx, productID)
}
