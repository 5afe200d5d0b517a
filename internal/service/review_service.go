package service

import (
	"strings"

	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// ReviewService 商品评价业务服务
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, orders repository.OrderRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, orders: orders}
}

// ListByProduct 获取商品的已审核评价列表
func (s *ReviewService) ListByProduct(productID uint, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviews.ListByProduct(repository.ReviewListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    productID,
		ApprovedOnly: true,
	})
}

// ListAdmin 获取后台评价列表
func (s *ReviewService) ListAdmin(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviews.ListAdmin(filter)
}

// Create 创建评价
// 每个用户对同一商品最多一条评价，默认待审核
func (s *ReviewService) Create(userID, productID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrReviewInvalid
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	existing, err := s.reviews.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.Create(review); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	return review, nil
}

// Approve 审核通过评价
func (s *ReviewService) Approve(id uint) (*models.Review, error) {
	review, err := s.reviews.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	if err := s.reviews.Approve(id); err != nil {
		return nil, err
	}
	return s.reviews.GetByID(id)
}

// Delete 删除评价
func (s *ReviewService) Delete(id uint) error {
	review, err := s.reviews.GetByID(id)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	return s.reviews.Delete(id)
}

// DeleteOwn 用户删除自己的评价
func (s *ReviewService) DeleteOwn(userID, id uint) error {
	review, err := s.reviews.GetByID(id)
	if err != nil {
		return err
	}
	if review == nil || review.UserID != userID {
		return ErrReviewNotFound
	}
	return s.reviews.Delete(id)
}
