package service

import (
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// WishlistService 心愿单业务服务
type WishlistService struct {
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
}

// NewWishlistService 创建心愿单服务
func NewWishlistService(wishlists repository.WishlistRepository, products repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists, products: products}
}

// List 获取用户心愿单
func (s *WishlistService) List(userID uint) ([]models.Wishlist, error) {
	return s.wishlists.ListByUser(userID)
}

// Add 添加商品到心愿单，重复添加返回冲突错误
func (s *WishlistService) Add(userID, productID uint) (*models.Wishlist, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	existing, err := s.wishlists.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWishlistExists
	}

	item := &models.Wishlist{UserID: userID, ProductID: productID}
	if err := s.wishlists.Create(item); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrWishlistExists
		}
		return nil, err
	}
	return item, nil
}

// Contains 判断商品是否已在用户心愿单中
func (s *WishlistService) Contains(userID, productID uint) (bool, error) {
	if userID == 0 || productID == 0 {
		return false, nil
	}
	existing, err := s.wishlists.GetByUserAndProduct(userID, productID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// Remove 从心愿单移除商品
func (s *WishlistService) Remove(userID, productID uint) error {
	affected, err := s.wishlists.DeleteByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWishlistNotFound
	}
	return nil
}
