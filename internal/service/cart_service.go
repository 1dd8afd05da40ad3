package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository"
)

// CartService 购物车服务。购物车在结账前是商品/数量的唯一事实来源，
// 每个用户一辆车，首次访问时惰性创建。
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetOrCreate 查询用户购物车，不存在时创建空车
func (s *CartService) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.cartRepo.GetByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c = &cart.Cart{UserID: userID}
	if err := s.cartRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Lines = []cart.Line{}
	return c, nil
}

// AddLine 向购物车加货。同一商品已在车里时合并数量，
// 库存校验按合并后的总量做（而不是本次新增量）。
func (s *CartService) AddLine(ctx context.Context, userID, productID, qty int64) (*cart.Cart, error) {
	if qty <= 0 {
		return nil, &ValidationError{Msg: "quantity must be positive"}
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Product", ID: productID}
		}
		return nil, err
	}
	if p.Stock < qty {
		return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name}
	}

	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.cartRepo.GetLine(ctx, c.ID, productID)
	switch {
	case err == nil:
		merged := line.Quantity + qty
		if p.Stock < merged {
			return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name}
		}
		line.Quantity = merged
	case errors.Is(err, repository.ErrNotFound):
		line = &cart.Line{CartID: c.ID, ProductID: productID, Quantity: qty}
	default:
		return nil, err
	}

	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUser(ctx, userID)
}

// UpdateLine 修改某行数量，按新数量重新校验库存
func (s *CartService) UpdateLine(ctx context.Context, userID, lineID, qty int64) (*cart.Cart, error) {
	if qty <= 0 {
		return nil, &ValidationError{Msg: "quantity must be positive"}
	}

	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.cartRepo.GetLineByID(ctx, c.ID, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Cart item", ID: lineID}
		}
		return nil, err
	}

	p, err := s.productRepo.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Stock < qty {
		return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name}
	}

	line.Quantity = qty
	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	return s.cartRepo.GetByUser(ctx, userID)
}

// RemoveLine 删除某行
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID int64) (*cart.Cart, error) {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.DeleteLine(ctx, c.ID, lineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Cart item", ID: lineID}
		}
		return nil, err
	}
	return s.cartRepo.GetByUser(ctx, userID)
}

// Clear 清空购物车行，车本身保留
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.cartRepo.ClearLines(ctx, c.ID)
}

// Total 按当前商品价格计算购物车合计（仅供展示，下单金额以结账时刻为准）
func (s *CartService) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range c.Lines {
		if line.Product == nil {
			continue
		}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	return total, nil
}
