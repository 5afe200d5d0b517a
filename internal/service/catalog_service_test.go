package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type catalogFixture struct {
	products   *ProductService
	categories *CategoryService
	db         *gorm.DB
}

func setupCatalogTest(t *testing.T) *catalogFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	return &catalogFixture{
		products:   NewProductService(productRepo, categoryRepo),
		categories: NewCategoryService(categoryRepo),
		db:         db,
	}
}

func (f *catalogFixture) createCategory(t *testing.T, slug, name string) *models.Category {
	t.Helper()
	category, err := f.categories.Create(CategoryInput{Slug: slug, Name: name})
	if err != nil {
		t.Fatalf("create category %s failed: %v", slug, err)
	}
	return category
}

func TestCategoryCreateAndSlugConflict(t *testing.T) {
	f := setupCatalogTest(t)

	root := f.createCategory(t, "handicrafts", "صنایع دستی")
	if !root.IsActive {
		t.Fatal("new category should default to active")
	}

	if _, err := f.categories.Create(CategoryInput{Slug: "handicrafts", Name: "تکراری"}); !errors.Is(err, ErrCategorySlugExists) {
		t.Fatalf("want ErrCategorySlugExists got %v", err)
	}
	if _, err := f.categories.Create(CategoryInput{Slug: "  ", Name: "بدون اسلاگ"}); !errors.Is(err, ErrCategoryInvalid) {
		t.Fatalf("want ErrCategoryInvalid got %v", err)
	}

	missing := uint(999)
	if _, err := f.categories.Create(CategoryInput{Slug: "orphan", Name: "یتیم", ParentID: &missing}); !errors.Is(err, ErrCategoryParentNotFound) {
		t.Fatalf("want ErrCategoryParentNotFound got %v", err)
	}

	child, err := f.categories.Create(CategoryInput{Slug: "pottery", Name: "سفالگری", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child category failed: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatalf("child should point at parent: %+v", child)
	}

	// 分类不能把自己设为父级
	if _, err := f.categories.Update(root.ID, CategoryInput{Slug: "handicrafts", Name: "صنایع دستی", ParentID: &root.ID}); !errors.Is(err, ErrCategoryInvalid) {
		t.Fatalf("want ErrCategoryInvalid for self parent got %v", err)
	}
}

func TestCategoryDeleteGuards(t *testing.T) {
	f := setupCatalogTest(t)
	root := f.createCategory(t, "home-kitchen", "خانه و آشپزخانه")
	child, err := f.categories.Create(CategoryInput{Slug: "cookware", Name: "ظروف پخت", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	if err := f.categories.Delete(root.ID); !errors.Is(err, ErrCategoryHasChildren) {
		t.Fatalf("want ErrCategoryHasChildren got %v", err)
	}

	if _, err := f.products.Create(ProductInput{
		CategoryID: child.ID,
		Slug:       "copper-pot",
		Name:       "قابلمه مسی",
		Price:      decimal.NewFromInt(3_800_000),
		Stock:      4,
	}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := f.categories.Delete(child.ID); !errors.Is(err, ErrCategoryHasProducts) {
		t.Fatalf("want ErrCategoryHasProducts got %v", err)
	}

	empty := f.createCategory(t, "empty", "خالی")
	if err := f.categories.Delete(empty.ID); err != nil {
		t.Fatalf("delete empty category failed: %v", err)
	}
	if err := f.categories.Delete(empty.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound got %v", err)
	}
}

func TestProductCreateValidation(t *testing.T) {
	f := setupCatalogTest(t)
	category := f.createCategory(t, "electronics", "کالای دیجیتال")

	base := ProductInput{
		CategoryID: category.ID,
		Slug:       "wireless-earbuds",
		Name:       "هدفون بی‌سیم",
		Price:      decimal.NewFromInt(12_500_000),
		Stock:      20,
	}
	if _, err := f.products.Create(base); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(in *ProductInput)
		wantErr error
	}{
		{"duplicate slug", func(in *ProductInput) {}, ErrProductSlugExists},
		{"blank name", func(in *ProductInput) { in.Slug = "other"; in.Name = "  " }, ErrProductInvalid},
		{"zero price", func(in *ProductInput) { in.Slug = "other"; in.Price = decimal.Zero }, ErrProductInvalid},
		{"invalid discount", func(in *ProductInput) { in.Slug = "other"; in.DiscountPercent = 120 }, ErrProductInvalid},
		{"negative stock", func(in *ProductInput) { in.Slug = "other"; in.Stock = -1 }, ErrProductInvalid},
		{"missing category", func(in *ProductInput) { in.Slug = "other"; in.CategoryID = category.ID + 99 }, ErrCategoryNotFound},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		if _, err := f.products.Create(in); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestProductPublicListingHidesInactive(t *testing.T) {
	f := setupCatalogTest(t)
	category := f.createCategory(t, "electronics", "کالای دیجیتال")

	inactive := false
	if _, err := f.products.Create(ProductInput{
		CategoryID: category.ID,
		Slug:       "hidden-gadget",
		Name:       "گجت مخفی",
		Price:      decimal.NewFromInt(5_000_000),
		Stock:      3,
		IsActive:   &inactive,
	}); err != nil {
		t.Fatalf("create inactive product failed: %v", err)
	}
	visible, err := f.products.Create(ProductInput{
		CategoryID: category.ID,
		Slug:       "smart-watch",
		Name:       "ساعت هوشمند",
		Price:      decimal.NewFromInt(28_900_000),
		Stock:      7,
	})
	if err != nil {
		t.Fatalf("create active product failed: %v", err)
	}

	list, total, err := f.products.ListPublic(ProductListInput{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("public list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != visible.ID {
		t.Fatalf("public list should hide inactive products, got total=%d", total)
	}

	if _, err := f.products.GetPublicBySlug("hidden-gadget"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound for inactive slug got %v", err)
	}
	product, err := f.products.GetPublicBySlug("  smart-watch  ")
	if err != nil {
		t.Fatalf("public slug lookup failed: %v", err)
	}
	if product.ID != visible.ID {
		t.Fatalf("want product %d got %d", visible.ID, product.ID)
	}

	// 后台列表包含停用商品
	_, adminTotal, err := f.products.ListAdmin(ProductListInput{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if adminTotal != 2 {
		t.Fatalf("admin list should include inactive, got %d", adminTotal)
	}
}

func TestProductCheckStock(t *testing.T) {
	f := setupCatalogTest(t)
	category := f.createCategory(t, "home-decor", "دکوراسیون منزل")

	inactive := false
	lowStock, err := f.products.Create(ProductInput{
		CategoryID: category.ID,
		Slug:       "ceramic-vase",
		Name:       "گلدان سرامیکی",
		Price:      decimal.NewFromInt(1_800_000),
		Stock:      2,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	hidden, err := f.products.Create(ProductInput{
		CategoryID: category.ID,
		Slug:       "retired-vase",
		Name:       "گلدان قدیمی",
		Price:      decimal.NewFromInt(900_000),
		Stock:      10,
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("create inactive product failed: %v", err)
	}

	cases := []struct {
		name      string
		productID uint
		quantity  int
		want      bool
	}{
		{"within stock", lowStock.ID, 2, true},
		{"over stock", lowStock.ID, 3, false},
		{"zero quantity", lowStock.ID, 0, false},
		{"inactive product", hidden.ID, 1, false},
		{"missing product", hidden.ID + 99, 1, false},
	}
	for _, tc := range cases {
		got, err := f.products.CheckStock(tc.productID, tc.quantity)
		if err != nil {
			t.Fatalf("%s: CheckStock failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	cases := []struct {
		price    int64
		discount int
		want     string
	}{
		{2_500_000, 0, "2500000"},
		{2_500_000, 10, "2250000"},
		{999, 33, "669.33"},
		{1_000, 100, "0"},
	}
	for _, tc := range cases {
		product := &models.Product{
			Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(tc.price)),
			DiscountPercent: tc.discount,
		}
		got := discountedUnitPrice(product)
		if got.String() != tc.want {
			t.Fatalf("price %d discount %d: want %s got %s", tc.price, tc.discount, tc.want, got)
		}
	}
}
