package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/repository"
)

// OrderService 结账编排与订单生命周期管理。
// 把可变的购物车一次性转成不可变订单：校验地址归属、预检库存、
// 定格价格、建单、逐行扣库存、清空购物车；之后订单只能沿状态机变迁，
// 取消时逐行回补库存。
type OrderService struct {
	orderRepo   order.Repository
	addressRepo address.Repository
	carts       *CartService
	inventory   *InventoryService
	tx          repository.TxManager
	events      EventPublisher
}

// NewOrderService 创建订单服务。events 可以为 nil（不发事件）。
func NewOrderService(
	orderRepo order.Repository,
	addressRepo address.Repository,
	carts *CartService,
	inventory *InventoryService,
	tx repository.TxManager,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		carts:       carts,
		inventory:   inventory,
		tx:          tx,
		events:      events,
	}
}

// PlaceOrder 从购物车下单。
// 预检（地址归属、空车、逐行库存）都在事务之外；建单、写订单行并扣库存、
// 清空购物车整体在一个事务里，任何一行扣减失败则全部回滚，
// 不会留下半成品订单。
func (s *OrderService) PlaceOrder(ctx context.Context, userID, addressID int64) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	// 1. 地址必须存在且归属下单用户
	addr, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Address", ID: addressID}
		}
		return nil, err
	}
	if addr.UserID != userID {
		return nil, ErrForbidden
	}

	// 2-3. 取购物车（惰性创建），空车不能下单
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 4. 对整车做库存预检，任何一行不足都在动库存之前失败
	for _, line := range c.Lines {
		if line.Product == nil {
			return nil, &NotFoundError{Entity: "Product", ID: line.ProductID}
		}
		if line.Product.Stock < line.Quantity {
			GetMonitor().RecordStockConflict()
			return nil, &InsufficientStockError{ProductID: line.Product.ID, Name: line.Product.Name}
		}
	}

	// 5. 按当前价格计算总额，金额全程用 decimal
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	// 6-8. 建单、写订单行并逐行扣库存、清空购物车，整体一个事务
	o := &order.Order{
		UserID:    userID,
		AddressID: &addr.ID,
		Status:    order.StatusPending,
		Total:     total,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Create(ctx, o); err != nil {
			return err
		}
		for _, line := range c.Lines {
			ol := &order.Line{
				OrderID:   o.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price, // 成交单价在此定格
			}
			if err := s.orderRepo.CreateLine(ctx, ol); err != nil {
				return err
			}
			// 预检通过后库存仍可能被并发结账抢走，
			// 这里的扣减守卫是最终防线，失败即整单回滚
			if _, err := s.inventory.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return s.carts.Clear(ctx, userID)
	})
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			GetMonitor().RecordStockConflict()
		}
		return nil, err
	}

	GetMonitor().RecordCheckoutSuccess()
	s.publish(ctx, EventOrderPlaced, o)

	// 9. 返回完整加载的订单
	return s.orderRepo.GetByID(ctx, o.ID)
}

// FindAll 查询订单列表；管理员可看全部
func (s *OrderService) FindAll(ctx context.Context, userID int64, isAdmin bool) ([]*order.Order, error) {
	if isAdmin {
		return s.orderRepo.ListAll(ctx)
	}
	return s.orderRepo.ListByUser(ctx, userID)
}

// FindOne 查询单个订单并做归属校验；管理员不受归属限制
func (s *OrderService) FindOne(ctx context.Context, id, userID int64, isAdmin bool) (*order.Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

// Transition 按状态机推进订单状态（管理端入口）。
// 目标为 cancelled 时先逐行回补库存再落状态，回补与状态变更
// 在同一事务内：中途失败则库存一分不动、状态保持原样。
func (s *OrderService) Transition(ctx context.Context, id int64, target order.Status) (*order.Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: o.Status, To: target}
	}

	if target == order.StatusCancelled {
		err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			for _, line := range o.Lines {
				// 无条件加回，库存独立变化后的取消同样是纯加法
				if _, err := s.inventory.Restore(ctx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			return s.orderRepo.UpdateStatus(ctx, id, target)
		})
	} else {
		err = s.orderRepo.UpdateStatus(ctx, id, target)
	}
	if err != nil {
		return nil, err
	}

	if target == order.StatusCancelled {
		GetMonitor().RecordCancel()
		s.publish(ctx, EventOrderCancelled, o)
	}

	return s.orderRepo.GetByID(ctx, id)
}

// Cancel 用户侧取消：只有本人且仍为 pending 的订单可以取消
func (s *OrderService) Cancel(ctx context.Context, id, userID int64) (*order.Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	if o.Status != order.StatusPending {
		// 用户侧不允许取消已支付订单，那是管理端的决定
		return nil, &InvalidTransitionError{From: o.Status, To: order.StatusCancelled}
	}
	return s.Transition(ctx, id, order.StatusCancelled)
}

func (s *OrderService) get(ctx context.Context, id int64) (*order.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Order", ID: id}
		}
		return nil, err
	}
	return o, nil
}

// publish 事件发布尽力而为，失败只记日志和计数，不影响主流程
func (s *OrderService) publish(ctx context.Context, eventType string, o *order.Order) {
	if s.events == nil {
		return
	}
	evt := NewOrderEvent(eventType, o)
	if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("failed to publish order event",
			zap.String("type", eventType),
			zap.Int64("order_id", o.ID),
			zap.Error(err))
	}
}
