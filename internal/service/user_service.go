package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository"
)

// UserService 注册 / 登录 / 用户查询
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

func newSalt() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Register 注册新用户，默认 customer 角色
func (s *UserService) Register(ctx context.Context, username, password string) (*user.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, errors.New("username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	u := &user.User{
		Username: username,
		Salt:     newSalt(),
		Role:     user.RoleCustomer,
	}
	u.Password = hashPassword(password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验口令并签发 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", errors.New("invalid username or password")
		}
		return "", err
	}
	if hashPassword(password, u.Salt) != u.Password {
		return "", errors.New("invalid username or password")
	}
	return auth.GenerateToken(s.jwt, u.ID, u.Username, u.Role)
}

// GetByID 按 ID 查询用户
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "User", ID: id}
		}
		return nil, err
	}
	return u, nil
}

// ListAll 管理端用户列表
func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}
