package main

import (
	"fmt"
	"os"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/logger"
	"github.com/toranj-shop/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化默认管理员，与服务端启动逻辑一致
	defaultAdminUser := os.Getenv("TORANJ_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("TORANJ_DEFAULT_ADMIN_PASSWORD")
	if err := models.InitDefaultAdmin(defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{
			Slug:        "electronics",
			Name:        "کالای دیجیتال",
			Description: "موبایل، هدفون، ساعت هوشمند و لوازم جانبی",
			SortOrder:   300,
			IsActive:    true,
		},
		{
			Slug:        "handicrafts",
			Name:        "صنایع دستی",
			Description: "خاتم‌کاری، میناکاری و سفال اصیل ایرانی",
			SortOrder:   200,
			IsActive:    true,
		},
		{
			Slug:        "home-kitchen",
			Name:        "خانه و آشپزخانه",
			Description: "ظروف، دمنوش و لوازم پذیرایی",
			SortOrder:   100,
			IsActive:    true,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 子分类挂在数码分类下
	var electronics models.Category
	if err := models.DB.Where("slug = ?", "electronics").First(&electronics).Error; err == nil {
		children := []models.Category{
			{
				Slug:      "audio",
				Name:      "صوتی و هدفون",
				ParentID:  &electronics.ID,
				SortOrder: 20,
				IsActive:  true,
			},
			{
				Slug:      "wearables",
				Name:      "گجت‌های پوشیدنی",
				ParentID:  &electronics.ID,
				SortOrder: 10,
				IsActive:  true,
			},
		}
		for _, cat := range children {
			var existing models.Category
			if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
				if err := models.DB.Create(&cat).Error; err != nil {
					stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
				} else {
					stdLog.Printf("Created category: %s", cat.Slug)
				}
			} else {
				stdLog.Printf("Category already exists: %s", cat.Slug)
			}
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "handicrafts", "home-kitchen", "audio", "wearables"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商品（价格单位：里亚尔）
	products := []models.Product{
		{
			CategoryID:      categoryIDs["audio"],
			Slug:            "wireless-earbuds-pro",
			Name:            "هدفون بی‌سیم پرو",
			Description:     "هدفون بلوتوث ۵.۳ با حذف نویز فعال و ۲۴ ساعت شارژدهی.",
			Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(12_500_000)),
			DiscountPercent: 10,
			Stock:           40,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			}),
			IsActive:   true,
			IsFeatured: true,
			SortOrder:  300,
		},
		{
			CategoryID:  categoryIDs["wearables"],
			Slug:        "smart-watch-s2",
			Name:        "ساعت هوشمند S2",
			Description: "پایش ضربان قلب، حالت‌های ورزشی متنوع و بدنه ضدآب.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(28_900_000)),
			Stock:       25,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			}),
			IsActive:   true,
			IsFeatured: true,
			SortOrder:  280,
		},
		{
			CategoryID:      categoryIDs["electronics"],
			Slug:            "power-bank-20000",
			Name:            "پاوربانک ۲۰ هزار",
			Description:     "شارژ سریع ۲۲.۵ وات با دو خروجی همزمان.",
			Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(8_400_000)),
			DiscountPercent: 15,
			Stock:           60,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=800",
			}),
			IsActive:  true,
			SortOrder: 260,
		},
		{
			CategoryID:  categoryIDs["handicrafts"],
			Slug:        "khatam-jewelry-box",
			Name:        "جعبه جواهر خاتم‌کاری شیراز",
			Description: "خاتم‌کاری دست‌ساز با آستر مخمل، کار استادکاران شیرازی.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(6_800_000)),
			Stock:       12,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1584589167171-541687075d27?w=800",
			}),
			IsActive:   true,
			IsFeatured: true,
			SortOrder:  240,
		},
		{
			CategoryID:      categoryIDs["handicrafts"],
			Slug:            "mina-kari-plate",
			Name:            "بشقاب میناکاری اصفهان",
			Description:     "بشقاب مسی میناکاری شده با نقوش اسلیمی، قطر ۲۵ سانتی‌متر.",
			Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(4_500_000)),
			DiscountPercent: 5,
			Stock:           18,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1578749556568-bc2c40e68b61?w=800",
			}),
			IsActive:  true,
			SortOrder: 220,
		},
		{
			CategoryID:  categoryIDs["home-kitchen"],
			Slug:        "saffron-tea-set",
			Name:        "سرویس چای‌خوری زعفرانی",
			Description: "سرویس شش نفره چینی با طرح گل و مرغ.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(9_700_000)),
			Stock:       10,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1556679343-c7306c1976bc?w=800",
			}),
			IsActive:  true,
			SortOrder: 200,
		},
		{
			CategoryID:      categoryIDs["home-kitchen"],
			Slug:            "copper-kettle",
			Name:            "کتری مسی زنجان",
			Description:     "کتری مس خالص دست‌ساز، مناسب اجاق گاز.",
			Price:           models.NewMoneyFromDecimal(decimal.NewFromInt(5_200_000)),
			DiscountPercent: 20,
			Stock:           0,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1544787219-7f47ccb76574?w=800",
			}),
			IsActive:  true,
			SortOrder: 180,
		},
		{
			CategoryID:  categoryIDs["electronics"],
			Slug:        "mechanical-keyboard",
			Name:        "کیبورد مکانیکال RGB",
			Description: "سوییچ قهوه‌ای، نورپردازی RGB و بدنه آلومینیومی.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(15_600_000)),
			Stock:       8,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1511467687858-23d96c32e4ae?w=800",
			}),
			IsActive:  false,
			SortOrder: 160,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.CategoryID = prod.CategoryID
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.DiscountPercent = prod.DiscountPercent
			existing.Stock = prod.Stock
			existing.Images = prod.Images
			existing.IsActive = prod.IsActive
			existing.IsFeatured = prod.IsFeatured
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 演示用户（仅限非 release 环境）
	if cfg.Server.Mode != "release" {
		demoEmail := "demo@toranj.shop"
		var existing models.User
		if err := models.DB.Where("email = ?", demoEmail).First(&existing).Error; err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte("Demo123456!"), bcrypt.DefaultCost)
			if err != nil {
				stdLog.Printf("Failed to hash demo user password: %v", err)
			} else {
				demoUser := models.User{
					Email:         demoEmail,
					PasswordHash:  string(hash),
					FirstName:     "کاربر",
					LastName:      "آزمایشی",
					Role:          "user",
					Locale:        "fa-IR",
					IsActive:      true,
					EmailVerified: true,
				}
				if err := models.DB.Create(&demoUser).Error; err != nil {
					stdLog.Printf("Failed to create demo user: %v", err)
				} else {
					stdLog.Printf("Created demo user: %s (password: Demo123456!)", demoEmail)
				}
			}
		} else {
			stdLog.Printf("Demo user already exists: %s", demoEmail)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 5 Categories (3 root + 2 children)")
	fmt.Println("- 8 Products")
	fmt.Println("- Default admin (TORANJ_DEFAULT_ADMIN_USERNAME / TORANJ_DEFAULT_ADMIN_PASSWORD)")
	fmt.Println("- Demo user in non-release mode")
}
