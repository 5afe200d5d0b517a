package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/toranj-shop/internal/cache"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// UserAdminService 后台用户管理服务
type UserAdminService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
}

// NewUserAdminService 创建后台用户管理服务
func NewUserAdminService(users repository.UserRepository, refreshTokens repository.RefreshTokenRepository) *UserAdminService {
	return &UserAdminService{users: users, refreshTokens: refreshTokens}
}

// List 获取用户列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.users.List(filter)
}

// Get 获取用户详情
func (s *UserAdminService) Get(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetActive 启用 / 禁用用户
// 禁用时吊销该用户所有刷新令牌
func (s *UserAdminService) SetActive(id uint, active bool) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		user.IsActive = active
		if err := s.users.WithTx(tx).Update(user); err != nil {
			return err
		}
		if !active {
			return s.refreshTokens.WithTx(tx).DeleteByUser(user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if active {
		_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	} else {
		_ = cache.DelUserAuthState(context.Background(), user.ID)
	}
	return user, nil
}
