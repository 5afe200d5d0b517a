package public

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/provider"
	"github.com/toranj-shop/internal/repository"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type paymentPageFixture struct {
	engine *gin.Engine
	userID uint
}

func setupPaymentPageTest(t *testing.T) *paymentPageFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	cfg := &config.Config{}
	cfg.App.Name = "Toranj"
	cfg.App.FrontendURL = "https://shop.example"
	cfg.Zarinpal.MerchantID = "00000000-0000-0000-0000-000000000001"

	orders := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(cfg, orders,
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		repository.NewAddressRepository(db),
		nil,
	)
	paymentService := service.NewPaymentService(cfg, orders, repository.NewUserRepository(db), orderService)

	handler := New(&provider.Container{
		Config:         cfg,
		PaymentService: paymentService,
	})

	engine := gin.New()
	engine.GET("/api/v1/payments/verify", handler.VerifyPayment)

	return &paymentPageFixture{engine: engine, userID: user.ID}
}

func (f *paymentPageFixture) seedOrder(t *testing.T, authority, orderNo, status, paymentStatus, refID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:          orderNo,
		UserID:           f.userID,
		Status:           status,
		PaymentMethod:    constants.PaymentMethodZarinpal,
		PaymentStatus:    paymentStatus,
		TotalAmount:      models.NewMoneyFromDecimal(decimal.NewFromInt(6_000_000)),
		ShippingName:     "سارا محمدی",
		ShippingPhone:    "09123456789",
		ShippingProvince: "تهران",
		ShippingCity:     "تهران",
		ShippingPostal:   "1234567890",
		ShippingAddress:  "خیابان ولیعصر، پلاک ۱۲",
		GatewayAuthority: authority,
		GatewayRefID:     refID,
	}
	if err := models.DB.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func (f *paymentPageFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestVerifyPaymentRendersSuccessPage(t *testing.T) {
	f := setupPaymentPageTest(t)
	order := f.seedOrder(t, "A-PAGE-1", "ORD-20260901-00001",
		constants.OrderStatusConfirmed, constants.PaymentStatusPaid, "555777")

	w := f.get(t, "/api/v1/payments/verify?Authority=A-PAGE-1&Status=OK")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("callback must render html, got %s", ct)
	}
	page := w.Body.String()
	if !strings.Contains(page, "پرداخت موفق") {
		t.Fatalf("success heading missing:\n%s", page)
	}
	if !strings.Contains(page, "ORD-20260901-00001") || !strings.Contains(page, "555777") {
		t.Fatalf("order no / ref id missing:\n%s", page)
	}
	if !strings.Contains(page, fmt.Sprintf("https://shop.example/orders/%d", order.ID)) {
		t.Fatalf("frontend redirect missing:\n%s", page)
	}
}

func TestVerifyPaymentRendersFailurePage(t *testing.T) {
	f := setupPaymentPageTest(t)
	order := f.seedOrder(t, "A-PAGE-2", "ORD-20260901-00002",
		constants.OrderStatusPending, constants.PaymentStatusUnpaid, "")

	w := f.get(t, "/api/v1/payments/verify?Authority=A-PAGE-2&Status=NOK")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", w.Code)
	}
	page := w.Body.String()
	if !strings.Contains(page, "پرداخت ناموفق") {
		t.Fatalf("failure heading missing:\n%s", page)
	}
	if !strings.Contains(page, "ORD-20260901-00002") {
		t.Fatalf("order no missing:\n%s", page)
	}
	if !strings.Contains(page, fmt.Sprintf("https://shop.example/orders/%d", order.ID)) {
		t.Fatalf("frontend redirect missing:\n%s", page)
	}

	// 用户取消后订单标记支付失败
	var stored models.Order
	if err := models.DB.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("want payment status FAILED got %s", stored.PaymentStatus)
	}
}

func TestVerifyPaymentUnknownAuthorityFallsBack(t *testing.T) {
	f := setupPaymentPageTest(t)

	w := f.get(t, "/api/v1/payments/verify?Authority=A-GHOST&Status=OK")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", w.Code)
	}
	page := w.Body.String()
	if !strings.Contains(page, "پرداخت ناموفق") {
		t.Fatalf("failure heading missing:\n%s", page)
	}
	if !strings.Contains(page, "https://shop.example/orders") {
		t.Fatalf("fallback redirect missing:\n%s", page)
	}
}
