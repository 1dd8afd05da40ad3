package service

import (
	"context"
	"errors"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/repository"
)

// AddressService 地址簿管理。所有读写都做归属校验：
// 跨用户使用地址按协议违规处理，直接 Forbidden。
type AddressService struct {
	repo address.Repository
}

// NewAddressService 创建地址服务
func NewAddressService(repo address.Repository) *AddressService {
	return &AddressService{repo: repo}
}

func (s *AddressService) ListByUser(ctx context.Context, userID int64) ([]*address.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetOwned 查询地址并校验归属
func (s *AddressService) GetOwned(ctx context.Context, id, userID int64) (*address.Address, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "Address", ID: id}
		}
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *AddressService) Create(ctx context.Context, userID int64, a *address.Address) error {
	a.ID = 0
	a.UserID = userID
	return s.repo.Create(ctx, a)
}

func (s *AddressService) Update(ctx context.Context, userID int64, a *address.Address) error {
	existing, err := s.GetOwned(ctx, a.ID, userID)
	if err != nil {
		return err
	}
	a.UserID = existing.UserID
	a.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, a)
}

// Delete 删除本人地址；引用它的订单保留，address_id 置 NULL
func (s *AddressService) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
