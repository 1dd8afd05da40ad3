package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := conn(ctx, r.db).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	if err := conn(ctx, r.db).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return conn(ctx, r.db).Create(u).Error
}

func (r *userRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	var list []*user.User
	if err := conn(ctx, r.db).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// translate 统一把 GORM 的未找到错误映射为仓储层错误
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
