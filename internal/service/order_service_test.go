package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	svc      *OrderService
	products repository.ProductRepository
	carts    repository.CartRepository
	userID   uint
	address  *models.Address
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	user := &models.User{Email: t.Name() + "@toranj.shop", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	address := &models.Address{
		UserID:       user.ID,
		ReceiverName: "سارا محمدی",
		Phone:        "09121234567",
		Province:     "تهران",
		City:         "تهران",
		PostalCode:   "1234567890",
		AddressLine:  "خیابان ولیعصر، پلاک ۱۲",
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}

	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	svc := NewOrderService(
		&config.Config{},
		repository.NewOrderRepository(db),
		products,
		carts,
		repository.NewAddressRepository(db),
		nil,
	)

	return &orderServiceFixture{
		svc:      svc,
		products: products,
		carts:    carts,
		userID:   user.ID,
		address:  address,
	}
}

func (f *orderServiceFixture) createProduct(t *testing.T, slug string, price int64, discount, stock int) *models.Product {
	t.Helper()
	category := &models.Category{Slug: slug + "-cat", Name: "دسته " + slug, IsActive: true}
	if err := models.DB.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:      category.ID,
		Slug:            slug,
		Name:            "کالای " + slug,
		Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		DiscountPercent: discount,
		Stock:           stock,
		IsActive:        true,
	}
	if err := f.products.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (f *orderServiceFixture) addToCart(t *testing.T, productID uint, quantity int) {
	t.Helper()
	cart, err := f.carts.GetOrCreateByUser(f.userID)
	if err != nil {
		t.Fatalf("get or create cart failed: %v", err)
	}
	if err := f.carts.CreateItem(&models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func (f *orderServiceFixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	product, err := f.products.GetByID(productID)
	if err != nil || product == nil {
		t.Fatalf("get product failed: %v", err)
	}
	return product.Stock
}

func TestCanTransitionOrderStatus(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusPending, constants.OrderStatusDelivered, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusProcessing, true},
		{constants.OrderStatusConfirmed, constants.OrderStatusDelivered, false},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusCancelled, false},
		{constants.OrderStatusDelivered, constants.OrderStatusRefunded, true},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
		{constants.OrderStatusRefunded, constants.OrderStatusConfirmed, false},
		{"UNKNOWN", constants.OrderStatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransitionOrderStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("transition %s -> %s: want %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "earbuds", 2_500_000, 10, 5)
	f.addToCart(t, product.ID, 2)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: "cash_on_delivery",
		Note:          " لطفا قبل از ارسال تماس بگیرید ",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if matched := regexp.MustCompile(`^ORD-\d{8}-\d{5}$`).MatchString(order.OrderNo); !matched {
		t.Fatalf("unexpected order no format: %s", order.OrderNo)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("want status PENDING got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusUnpaid {
		t.Fatalf("want payment status UNPAID got %s", order.PaymentStatus)
	}
	if order.PaymentMethod != constants.PaymentMethodCashOnDelivery {
		t.Fatalf("want payment method CASH_ON_DELIVERY got %s", order.PaymentMethod)
	}

	if !order.Subtotal.Decimal.Equal(decimal.NewFromInt(5_000_000)) {
		t.Fatalf("want subtotal 5000000 got %s", order.Subtotal.Decimal)
	}
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(500_000)) {
		t.Fatalf("want discount 500000 got %s", order.DiscountAmount.Decimal)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(4_500_000)) {
		t.Fatalf("want total 4500000 got %s", order.TotalAmount.Decimal)
	}

	if len(order.Items) != 1 {
		t.Fatalf("want 1 order item got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.ProductID != product.ID || item.Quantity != 2 || item.DiscountPercent != 10 {
		t.Fatalf("unexpected order item snapshot: %+v", item)
	}
	if !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(2_500_000)) {
		t.Fatalf("want unit price 2500000 got %s", item.UnitPrice.Decimal)
	}

	if order.ShippingName != "سارا محمدی" || order.ShippingCity != "تهران" {
		t.Fatalf("shipping snapshot not taken from address: %+v", order)
	}

	if got := f.stockOf(t, product.ID); got != 3 {
		t.Fatalf("want stock 3 after order got %d", got)
	}

	cart, err := f.carts.GetByUser(f.userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if cart != nil && len(cart.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(cart.Items))
	}
}

func TestCreateOrderWithExplicitItems(t *testing.T) {
	f := setupOrderServiceTest(t)
	direct := f.createProduct(t, "direct", 3_000_000, 0, 8)
	parked := f.createProduct(t, "parked", 1_000_000, 0, 4)
	f.addToCart(t, parked.ID, 1)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
		Items:         []OrderItemInput{{ProductID: direct.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order with explicit items failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != direct.ID || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(9_000_000)) {
		t.Fatalf("want total 9000000 got %s", order.TotalAmount.Decimal)
	}
	if got := f.stockOf(t, direct.ID); got != 5 {
		t.Fatalf("want stock 5 after order got %d", got)
	}

	// 显式下单不动购物车
	cart, err := f.carts.GetByUser(f.userID)
	if err != nil || cart == nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart must stay untouched, got %d items", len(cart.Items))
	}

	for _, bad := range []OrderItemInput{
		{ProductID: 0, Quantity: 1},
		{ProductID: direct.ID, Quantity: 0},
	} {
		if _, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
			AddressID:     f.address.ID,
			PaymentMethod: constants.PaymentMethodCashOnDelivery,
			Items:         []OrderItemInput{bad},
		}); !errors.Is(err, ErrInvalidOrderItem) {
			t.Fatalf("want ErrInvalidOrderItem for %+v got %v", bad, err)
		}
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	f := setupOrderServiceTest(t)
	cheap := f.createProduct(t, "cheap", 1_000_000, 0, 10)
	scarce := f.createProduct(t, "scarce", 2_000_000, 0, 1)
	f.addToCart(t, cheap.ID, 1)
	f.addToCart(t, scarce.ID, 2)

	_, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	// 事务回滚后任何商品库存都不应被扣减
	if got := f.stockOf(t, cheap.ID); got != 10 {
		t.Fatalf("cheap stock should roll back to 10, got %d", got)
	}
	if got := f.stockOf(t, scarce.ID); got != 1 {
		t.Fatalf("scarce stock should roll back to 1, got %d", got)
	}

	cart, err := f.carts.GetByUser(f.userID)
	if err != nil || cart == nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("cart should keep items after failed checkout, got %d", len(cart.Items))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "basic", 1_000_000, 0, 3)

	_, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: "BITCOIN",
	})
	if !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("want ErrPaymentMethodInvalid got %v", err)
	}

	_, err = f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty got %v", err)
	}

	f.addToCart(t, product.ID, 1)
	_, err = f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID + 100,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("want ErrAddressNotFound got %v", err)
	}
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "retired", 1_000_000, 0, 3)
	f.addToCart(t, product.ID, 1)

	product.IsActive = false
	if err := f.products.Update(product); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	_, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}
	if got := f.stockOf(t, product.ID); got != 3 {
		t.Fatalf("stock should be untouched, got %d", got)
	}
}

func TestCancelByUserRestoresStockOnce(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "cancellable", 3_000_000, 0, 4)
	f.addToCart(t, product.ID, 3)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if got := f.stockOf(t, product.ID); got != 1 {
		t.Fatalf("want stock 1 after order got %d", got)
	}

	cancelled, err := f.svc.CancelByUser(f.userID, order.ID)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("want status CANCELLED got %s", cancelled.Status)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("canceled_at should be set")
	}
	if got := f.stockOf(t, product.ID); got != 4 {
		t.Fatalf("want stock restored to 4 got %d", got)
	}

	// 重复取消不可二次恢复库存
	if _, err := f.svc.CancelByUser(f.userID, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("want ErrOrderStatusInvalid on double cancel got %v", err)
	}
	if got := f.stockOf(t, product.ID); got != 4 {
		t.Fatalf("stock restored twice: want 4 got %d", got)
	}
}

func TestCancelByUserRejectsShippedAndPaid(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "shipped", 2_000_000, 0, 5)
	f.addToCart(t, product.ID, 1)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := models.DB.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusShipped).Error; err != nil {
		t.Fatalf("force shipped failed: %v", err)
	}
	if _, err := f.svc.CancelByUser(f.userID, order.ID); !errors.Is(err, ErrOrderCancelShipped) {
		t.Fatalf("want ErrOrderCancelShipped got %v", err)
	}

	if err := models.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":         constants.OrderStatusConfirmed,
		"payment_status": constants.PaymentStatusPaid,
	}).Error; err != nil {
		t.Fatalf("force paid failed: %v", err)
	}
	if _, err := f.svc.CancelByUser(f.userID, order.ID); !errors.Is(err, ErrOrderCancelPaid) {
		t.Fatalf("want ErrOrderCancelPaid got %v", err)
	}
}

func TestCancelTimeoutSkipsPaidOrder(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "timeout", 2_000_000, 0, 5)
	f.addToCart(t, product.ID, 2)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	full, err := f.svc.GetUserOrder(f.userID, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if err := f.svc.MarkPaid(full, "REF-001"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if err := f.svc.CancelTimeout(order.ID); err != nil {
		t.Fatalf("cancel timeout failed: %v", err)
	}
	got, err := f.svc.GetUserOrder(f.userID, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("paid order must not be timeout-cancelled, got status %s", got.Status)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid || got.PaidAt == nil {
		t.Fatalf("payment fields not set: %+v", got)
	}
	if got.GatewayRefID != "REF-001" {
		t.Fatalf("want gateway ref REF-001 got %s", got.GatewayRefID)
	}
	if got := f.stockOf(t, product.ID); got != 3 {
		t.Fatalf("stock should stay at 3, got %d", got)
	}
}

func TestCancelTimeoutCancelsPendingOrder(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "stale", 2_000_000, 0, 5)
	f.addToCart(t, product.ID, 2)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := f.svc.CancelTimeout(order.ID); err != nil {
		t.Fatalf("cancel timeout failed: %v", err)
	}
	got, err := f.svc.GetUserOrder(f.userID, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("want CANCELLED got %s", got.Status)
	}
	if got := f.stockOf(t, product.ID); got != 5 {
		t.Fatalf("stock should be restored to 5, got %d", got)
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "idem", 2_000_000, 0, 5)
	f.addToCart(t, product.ID, 1)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodZarinpal,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	first, _ := f.svc.GetUserOrder(f.userID, order.ID)
	if err := f.svc.MarkPaid(first, "REF-100"); err != nil {
		t.Fatalf("first mark paid failed: %v", err)
	}
	paid, _ := f.svc.GetUserOrder(f.userID, order.ID)
	if err := f.svc.MarkPaid(paid, "REF-200"); err != nil {
		t.Fatalf("second mark paid failed: %v", err)
	}

	got, _ := f.svc.GetUserOrder(f.userID, order.ID)
	if got.GatewayRefID != "REF-100" {
		t.Fatalf("repeated callback must not overwrite ref, got %s", got.GatewayRefID)
	}
	if got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("want CONFIRMED got %s", got.Status)
	}
}

func TestAdminUpdateStatusFlow(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "flow", 2_000_000, 0, 5)
	f.addToCart(t, product.ID, 1)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 非法跳转
	if _, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{Status: constants.OrderStatusDelivered}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("want ErrOrderStatusInvalid got %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusProcessing,
	} {
		if _, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{Status: status}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	tracking := "TRK-98765"
	shipped, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{
		Status:       "shipped",
		TrackingCode: &tracking,
	})
	if err != nil {
		t.Fatalf("transition to SHIPPED failed: %v", err)
	}
	if shipped.Status != constants.OrderStatusShipped || shipped.ShippedAt == nil {
		t.Fatalf("shipped fields not set: %+v", shipped)
	}
	if shipped.TrackingCode != "TRK-98765" {
		t.Fatalf("want tracking TRK-98765 got %s", shipped.TrackingCode)
	}

	delivered, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{Status: constants.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("transition to DELIVERED failed: %v", err)
	}
	if delivered.DeliveredAt == nil {
		t.Fatalf("delivered_at should be set")
	}

	refunded, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{Status: constants.OrderStatusRefunded})
	if err != nil {
		t.Fatalf("transition to REFUNDED failed: %v", err)
	}
	if refunded.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("refund must flip payment status, got %s", refunded.PaymentStatus)
	}
}

func TestAdminUpdateStatusCancelRestoresStock(t *testing.T) {
	f := setupOrderServiceTest(t)
	product := f.createProduct(t, "admin-cancel", 2_000_000, 0, 6)
	f.addToCart(t, product.ID, 4)

	order, err := f.svc.CreateOrder(f.userID, CreateOrderInput{
		AddressID:     f.address.ID,
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	note := "مشتری درخواست لغو داد"
	cancelled, err := f.svc.UpdateStatus(order.ID, UpdateStatusInput{
		Status:    constants.OrderStatusCancelled,
		AdminNote: &note,
	})
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("want CANCELLED got %s", cancelled.Status)
	}
	if cancelled.AdminNote != note {
		t.Fatalf("want admin note saved, got %q", cancelled.AdminNote)
	}
	if got := f.stockOf(t, product.ID); got != 6 {
		t.Fatalf("want stock restored to 6 got %d", got)
	}
}
