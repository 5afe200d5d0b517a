package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categories: categories}
}

// ProductListInput 商品列表查询输入
type ProductListInput struct {
	Page         int
	PageSize     int
	CategorySlug string
	Search       string
	MinPrice     *int64
	MaxPrice     *int64
	Featured     *bool
	Sort         string
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(input ProductListInput) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		CategorySlug: strings.TrimSpace(input.CategorySlug),
		Search:       strings.TrimSpace(input.Search),
		MinPrice:     input.MinPrice,
		MaxPrice:     input.MaxPrice,
		Featured:     input.Featured,
		Sort:         input.Sort,
		OnlyActive:   true,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CheckStock 判断商品当前库存能否满足数量
// 商品不存在、已下架或数量非法均返回 false
func (s *ProductService) CheckStock(productID uint, quantity int) (bool, error) {
	if productID == 0 || quantity <= 0 {
		return false, nil
	}
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return false, err
	}
	if product == nil || !product.IsActive {
		return false, nil
	}
	return product.Stock >= quantity, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(input ProductListInput) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		CategorySlug: strings.TrimSpace(input.CategorySlug),
		Search:       strings.TrimSpace(input.Search),
		MinPrice:     input.MinPrice,
		MaxPrice:     input.MaxPrice,
		Featured:     input.Featured,
		Sort:         input.Sort,
		OnlyActive:   false,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID      uint
	Slug            string
	Name            string
	Description     string
	Price           decimal.Decimal
	DiscountPercent int
	Stock           int
	Images          []string
	IsActive        *bool
	IsFeatured      *bool
	SortOrder       int
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	if err := s.validateInput(&input, nil); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	isFeatured := false
	if input.IsFeatured != nil {
		isFeatured = *input.IsFeatured
	}

	product := &models.Product{
		CategoryID:      input.CategoryID,
		Slug:            strings.TrimSpace(input.Slug),
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Price:           models.NewMoneyFromDecimal(input.Price),
		DiscountPercent: input.DiscountPercent,
		Stock:           input.Stock,
		Images:          input.Images,
		IsActive:        isActive,
		IsFeatured:      isFeatured,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return s.GetAdminByID(product.ID)
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.validateInput(&input, &id); err != nil {
		return nil, err
	}

	product.CategoryID = input.CategoryID
	product.Slug = strings.TrimSpace(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.DiscountPercent = input.DiscountPercent
	product.Stock = input.Stock
	product.Images = input.Images
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return s.GetAdminByID(product.ID)
}

// Delete 删除商品（软删除）
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}

func (s *ProductService) validateInput(input *ProductInput, excludeID *uint) error {
	input.Slug = strings.TrimSpace(input.Slug)
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" {
		return ErrProductInvalid
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return ErrProductInvalid
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return ErrProductInvalid
	}
	if input.Stock < 0 {
		return ErrProductInvalid
	}

	category, err := s.categories.GetByID(input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductSlugExists
	}
	return nil
}

// discountedUnitPrice 折后单价（向下保留 2 位小数）
func discountedUnitPrice(product *models.Product) decimal.Decimal {
	price := product.Price.Decimal
	if product.DiscountPercent <= 0 {
		return price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - product.DiscountPercent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}
