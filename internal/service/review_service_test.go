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

type reviewFixture struct {
	svc      *ReviewService
	products repository.ProductRepository
	db       *gorm.DB
}

func setupReviewServiceTest(t *testing.T) *reviewFixture {
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
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	products := repository.NewProductRepository(db)
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		products,
		repository.NewOrderRepository(db),
	)
	return &reviewFixture{svc: svc, products: products, db: db}
}

func (f *reviewFixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, IsActive: true}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (f *reviewFixture) createProduct(t *testing.T, slug string) *models.Product {
	t.Helper()
	category := &models.Category{Slug: slug + "-cat", Name: "دسته " + slug, IsActive: true}
	if err := f.db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID: category.ID,
		Slug:       slug,
		Name:       "کالای " + slug,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(1_000_000)),
		Stock:      10,
		IsActive:   true,
	}
	if err := f.products.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestReviewCreateValidation(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "sara@toranj.shop")
	product := f.createProduct(t, "kettle")

	for _, rating := range []int{0, 6, -1} {
		if _, err := f.svc.Create(user.ID, product.ID, rating, "x"); !errors.Is(err, ErrReviewInvalid) {
			t.Fatalf("rating %d: want ErrReviewInvalid got %v", rating, err)
		}
	}
	if _, err := f.svc.Create(user.ID, product.ID+100, 5, "x"); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}

	product.IsActive = false
	if err := f.products.Update(product); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	if _, err := f.svc.Create(user.ID, product.ID, 5, "x"); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable for inactive got %v", err)
	}
}

func TestReviewCreateDuplicate(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "sara@toranj.shop")
	product := f.createProduct(t, "rug")

	review, err := f.svc.Create(user.ID, product.ID, 4, "  کیفیت بافت عالی بود  ")
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Comment != "کیفیت بافت عالی بود" {
		t.Fatalf("comment should be trimmed, got %q", review.Comment)
	}
	if review.IsApproved {
		t.Fatal("new review should await moderation")
	}

	if _, err := f.svc.Create(user.ID, product.ID, 5, "دوباره"); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("want ErrReviewExists got %v", err)
	}

	// 其他用户仍可评价同一商品
	other := f.createUser(t, "reza@toranj.shop")
	if _, err := f.svc.Create(other.ID, product.ID, 5, "عالی"); err != nil {
		t.Fatalf("second user review failed: %v", err)
	}
}

func TestReviewApprovalGatesPublicList(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "sara@toranj.shop")
	other := f.createUser(t, "reza@toranj.shop")
	product := f.createProduct(t, "samovar")

	if _, err := f.svc.Create(user.ID, product.ID, 4, "هنوز در انتظار تایید"); err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	approvedSrc, err := f.svc.Create(other.ID, product.ID, 5, "تایید شده")
	if err != nil {
		t.Fatalf("create second review failed: %v", err)
	}

	reviews, total, err := f.svc.ListByProduct(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list reviews failed: %v", err)
	}
	if total != 0 || len(reviews) != 0 {
		t.Fatalf("unapproved reviews must stay hidden, got %d", total)
	}

	approved, err := f.svc.Approve(approvedSrc.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.IsApproved {
		t.Fatal("approve should flip the flag")
	}

	reviews, total, err = f.svc.ListByProduct(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list after approve failed: %v", err)
	}
	if total != 1 || len(reviews) != 1 || reviews[0].ID != approvedSrc.ID {
		t.Fatalf("want only the approved review, got total=%d", total)
	}

	// 后台列表不过滤审核状态
	all, adminTotal, err := f.svc.ListAdmin(repository.ReviewListFilter{Page: 1, PageSize: 10, ProductID: product.ID})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if adminTotal != 2 || len(all) != 2 {
		t.Fatalf("admin list should see both reviews, got %d", adminTotal)
	}
}

func TestReviewDeleteOwnership(t *testing.T) {
	f := setupReviewServiceTest(t)
	user := f.createUser(t, "sara@toranj.shop")
	other := f.createUser(t, "reza@toranj.shop")
	product := f.createProduct(t, "plate-set")

	review, err := f.svc.Create(user.ID, product.ID, 3, "معمولی")
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	if err := f.svc.DeleteOwn(other.ID, review.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("want ErrReviewNotFound for foreign delete got %v", err)
	}
	if err := f.svc.DeleteOwn(user.ID, review.ID); err != nil {
		t.Fatalf("delete own failed: %v", err)
	}
	if err := f.svc.DeleteOwn(user.ID, review.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("want ErrReviewNotFound after delete got %v", err)
	}
	if err := f.svc.Delete(review.ID + 100); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("want ErrReviewNotFound for admin delete of missing got %v", err)
	}
}
