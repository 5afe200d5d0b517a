//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Product{},
		&models.Category{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchAndPriceFilter(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{
		Slug: "pg-category",
		Name: "کالای دیجیتال",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	repo := NewProductRepository(db)
	products := []*models.Product{
		{
			CategoryID:  category.ID,
			Slug:        "pg-earbuds",
			Name:        "هدفون بی‌سیم",
			Description: "noise cancelling earbuds",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(12_500_000)),
			Stock:       10,
			IsActive:    true,
		},
		{
			CategoryID:  category.ID,
			Slug:        "pg-watch",
			Name:        "ساعت هوشمند",
			Description: "waterproof smart watch",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(28_900_000)),
			Stock:       5,
			IsActive:    true,
		},
		{
			CategoryID:  category.ID,
			Slug:        "pg-hidden",
			Name:        "هدفون قدیمی",
			Description: "discontinued earbuds",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(3_000_000)),
			Stock:       0,
			IsActive:    false,
		},
	}
	for _, p := range products {
		if err := repo.Create(p); err != nil {
			t.Fatalf("create product %s failed: %v", p.Slug, err)
		}
	}

	rows, total, err := repo.List(ProductListFilter{
		Page:       1,
		Search:     "هدفون",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "pg-earbuds" {
		t.Fatalf("product search want pg-earbuds got total=%d rows=%d", total, len(rows))
	}

	minPrice := int64(20_000_000)
	rows, total, err = repo.List(ProductListFilter{
		Page:       1,
		MinPrice:   &minPrice,
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("product price filter failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "pg-watch" {
		t.Fatalf("product price filter want pg-watch got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{
		Page: 1,
		Sort: constants.ProductSortPriceAsc,
	})
	if err != nil {
		t.Fatalf("product sort failed: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("product sort want 3 rows got total=%d rows=%d", total, len(rows))
	}
	if rows[0].Slug != "pg-hidden" || rows[2].Slug != "pg-watch" {
		t.Fatalf("product sort order unexpected: %s .. %s", rows[0].Slug, rows[2].Slug)
	}
}

func TestPostgresOrderListFilters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	user := &models.User{Email: "pg-order@toranj.shop", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	orders := []*models.Order{
		{
			OrderNo:       "ORD-20260830-00001",
			UserID:        user.ID,
			Status:        constants.OrderStatusPending,
			PaymentMethod: constants.PaymentMethodZarinpal,
			PaymentStatus: constants.PaymentStatusUnpaid,
			Subtotal:      models.NewMoneyFromDecimal(decimal.NewFromInt(5_000_000)),
			TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(5_000_000)),
			CreatedAt:     now.Add(-48 * time.Hour),
		},
		{
			OrderNo:       "ORD-20260831-00002",
			UserID:        user.ID,
			Status:        constants.OrderStatusShipped,
			PaymentMethod: constants.PaymentMethodCashOnDelivery,
			PaymentStatus: constants.PaymentStatusUnpaid,
			Subtotal:      models.NewMoneyFromDecimal(decimal.NewFromInt(9_700_000)),
			TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(9_700_000)),
			CreatedAt:     now,
		},
	}
	for _, o := range orders {
		if err := repo.Create(o, []models.OrderItem{
			{ProductID: 1, ProductName: "کالا", UnitPrice: o.Subtotal, Quantity: 1, TotalPrice: o.Subtotal},
		}); err != nil {
			t.Fatalf("create order %s failed: %v", o.OrderNo, err)
		}
	}

	rows, total, err := repo.ListAdmin(OrderListFilter{
		Page:   1,
		Status: constants.OrderStatusShipped,
	})
	if err != nil {
		t.Fatalf("order status filter failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].OrderNo != "ORD-20260831-00002" {
		t.Fatalf("order status filter unexpected: total=%d rows=%d", total, len(rows))
	}

	from := now.Add(-time.Hour)
	rows, total, err = repo.ListAdmin(OrderListFilter{
		Page:        1,
		CreatedFrom: &from,
	})
	if err != nil {
		t.Fatalf("order created_from filter failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].OrderNo != "ORD-20260831-00002" {
		t.Fatalf("order created_from filter unexpected: total=%d rows=%d", total, len(rows))
	}

	got, err := repo.GetByOrderNo("ORD-20260830-00001")
	if err != nil {
		t.Fatalf("get order by order_no failed: %v", err)
	}
	if got == nil || got.UserID != user.ID || len(got.Items) != 1 {
		t.Fatalf("get order by order_no unexpected result: %+v", got)
	}

	count, err := repo.CountCreatedBetween(now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("count created between failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count created between want 1 got %d", count)
	}
}
