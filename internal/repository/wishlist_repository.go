package repository

import (
	"errors"

	"github.com/toranj-shop/internal/models"

	"gorm.io/gorm"
)

// WishlistRepository 心愿单数据访问接口
type WishlistRepository interface {
	Create(item *models.Wishlist) error
	GetByUserAndProduct(userID, productID uint) (*models.Wishlist, error)
	ListByUser(userID uint) ([]models.Wishlist, error)
	DeleteByUserAndProduct(userID, productID uint) (int64, error)
}

// GormWishlistRepository GORM 实现
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 创建心愿单仓库
func NewWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Create 添加心愿单项
func (r *GormWishlistRepository) Create(item *models.Wishlist) error {
	return r.db.Create(item).Error
}

// GetByUserAndProduct 根据用户与商品获取心愿单项
func (r *GormWishlistRepository) GetByUserAndProduct(userID, productID uint) (*models.Wishlist, error) {
	var item models.Wishlist
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByUser 用户心愿单列表
func (r *GormWishlistRepository) ListByUser(userID uint) ([]models.Wishlist, error) {
	var items []models.Wishlist
	err := r.db.Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteByUserAndProduct 删除心愿单项，返回影响行数。
func (r *GormWishlistRepository) DeleteByUserAndProduct(userID, productID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
