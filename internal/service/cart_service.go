package service

import (
	"github.com/shopspring/decimal"

	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

// CartService 购物车业务服务
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// CartItemView 购物车条目视图（价格按当前商品快照实时计算）
type CartItemView struct {
	ID              uint            `json:"id"`
	ProductID       uint            `json:"product_id"`
	Product         *models.Product `json:"product,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       models.Money    `json:"unit_price"`
	DiscountPercent int             `json:"discount_percent"`
	DiscountedPrice models.Money    `json:"discounted_price"`
	LineTotal       models.Money    `json:"line_total"`
	IsAvailable     bool            `json:"is_available"`
}

// CartView 购物车视图
type CartView struct {
	ID             uint           `json:"id"`
	Items          []CartItemView `json:"items"`
	ItemCount      int            `json:"item_count"`
	Subtotal       models.Money   `json:"subtotal"`
	DiscountAmount models.Money   `json:"discount_amount"`
	TotalAmount    models.Money   `json:"total_amount"`
}

// GetCart 获取当前用户购物车，不存在时返回空购物车
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	cart, err := s.carts.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	return buildCartView(cart), nil
}

// AddItem 添加商品到购物车
// 同一商品重复添加时累加数量，累计数量不得超过库存
func (s *CartService) AddItem(userID, productID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidOrderItem
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	cart, err := s.carts.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}

	total := quantity
	if existing != nil {
		total += existing.Quantity
	}
	if total > product.Stock {
		return nil, ErrInsufficientStock
	}

	if existing != nil {
		if err := s.carts.UpdateItemQuantity(existing.ID, total); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.carts.CreateItem(item); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID)
}

// UpdateItem 修改购物车条目数量
func (s *CartService) UpdateItem(userID, itemID uint, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidOrderItem
	}

	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}
	if quantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	if err := s.carts.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// RemoveItem 删除购物车条目
func (s *CartService) RemoveItem(userID, itemID uint) (*CartView, error) {
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(item.ID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// Clear 清空购物车，幂等
func (s *CartService) Clear(userID uint) error {
	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.carts.ClearByCart(cart.ID)
}

func (s *CartService) ownedItem(userID, itemID uint) (*models.CartItem, error) {
	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	item, err := s.carts.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CartID != cart.ID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func buildCartView(cart *models.Cart) *CartView {
	view := &CartView{
		ID:    cart.ID,
		Items: make([]CartItemView, 0, len(cart.Items)),
	}
	subtotal := decimal.Zero
	total := decimal.Zero

	for i := range cart.Items {
		item := &cart.Items[i]
		itemView := CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		product := item.Product
		if product == nil || product.ID == 0 || !product.IsActive {
			view.Items = append(view.Items, itemView)
			continue
		}

		unit := product.Price.Decimal.Round(2)
		discounted := discountedUnitPrice(product)
		line := discounted.Mul(decimal.NewFromInt(int64(item.Quantity)))

		itemView.Product = product
		itemView.UnitPrice = models.NewMoneyFromDecimal(unit)
		itemView.DiscountPercent = product.DiscountPercent
		itemView.DiscountedPrice = models.NewMoneyFromDecimal(discounted)
		itemView.LineTotal = models.NewMoneyFromDecimal(line)
		itemView.IsAvailable = product.Stock >= item.Quantity
		view.Items = append(view.Items, itemView)

		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		total = total.Add(line)
		view.ItemCount += item.Quantity
	}

	view.Subtotal = models.NewMoneyFromDecimal(subtotal)
	view.TotalAmount = models.NewMoneyFromDecimal(total)
	view.DiscountAmount = models.NewMoneyFromDecimal(subtotal.Sub(total))
	return view
}
