package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/logger"
	"github.com/example/goshop/internal/repository"
	"github.com/example/goshop/internal/repository/mysql"
)

// 初始化演示数据：管理员/顾客账号、分类和商品。
// 重复执行是幂等的，已存在的记录会被跳过。

type seedProduct struct {
	Name         string
	Slug         string
	Description  string
	Price        string
	Stock        int64
	CategorySlug string
}

var seedCategories = []category.Category{
	{Name: "Electronics", Slug: "electronics"},
	{Name: "Clothing", Slug: "clothing"},
	{Name: "Books", Slug: "books"},
	{Name: "Home & Garden", Slug: "home-garden"},
	{Name: "Sports", Slug: "sports"},
}

var seedProducts = []seedProduct{
	{"iPhone 15 Pro", "iphone-15-pro", "The latest iPhone with A17 Pro chip and titanium design.", "999.99", 50, "electronics"},
	{"MacBook Air M3", "macbook-air-m3", "Supercharged by M3 chip. Strikingly thin design.", "1099.00", 30, "electronics"},
	{"Sony WH-1000XM5", "sony-wh-1000xm5", "Industry-leading noise canceling headphones.", "349.99", 100, "electronics"},
	{"Cotton T-Shirt", "cotton-t-shirt", "Premium 100% cotton t-shirt. Available in multiple colors.", "29.99", 200, "clothing"},
	{"Denim Jeans", "denim-jeans", "Classic fit denim jeans. Comfortable and durable.", "79.99", 150, "clothing"},
	{"Clean Code", "clean-code", "A Handbook of Agile Software Craftsmanship by Robert C. Martin.", "39.99", 75, "books"},
	{"The Pragmatic Programmer", "the-pragmatic-programmer", "Your Journey To Mastery, 20th Anniversary Edition.", "49.99", 60, "books"},
	{"Garden Tool Set", "garden-tool-set", "Complete set of essential gardening tools.", "89.99", 40, "home-garden"},
	{"Yoga Mat", "yoga-mat", "Non-slip exercise yoga mat. Perfect for home workouts.", "34.99", 120, "sports"},
	{"Running Shoes", "running-shoes", "Lightweight running shoes with cushioned sole.", "129.99", 80, "sports"},
}

const productImageURL = "https://picsum.photos/seed/goshop/800/600"

func main() {
	logger.Init()

	cfg, err := config.Load("./config")
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)

	ctx := context.Background()

	seedUser(ctx, userRepo, "admin", "admin123", user.RoleAdmin)
	seedUser(ctx, userRepo, "customer", "customer123", user.RoleCustomer)

	// slug -> 分类 ID，供商品引用
	categoryIDs := make(map[string]int64, len(seedCategories))
	for i := range seedCategories {
		c := seedCategories[i]
		existing, err := categoryRepo.GetBySlug(ctx, c.Slug)
		if err == nil {
			categoryIDs[c.Slug] = existing.ID
			zap.L().Info("category exists, skipped", zap.String("slug", c.Slug))
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			zap.L().Fatal("failed to look up category", zap.String("slug", c.Slug), zap.Error(err))
		}
		if err := categoryRepo.Create(ctx, &c); err != nil {
			zap.L().Fatal("failed to create category", zap.String("slug", c.Slug), zap.Error(err))
		}
		categoryIDs[c.Slug] = c.ID
		zap.L().Info("category created", zap.String("slug", c.Slug), zap.Int64("id", c.ID))
	}

	for _, sp := range seedProducts {
		if _, err := productRepo.GetBySlug(ctx, sp.Slug); err == nil {
			zap.L().Info("product exists, skipped", zap.String("slug", sp.Slug))
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			zap.L().Fatal("failed to look up product", zap.String("slug", sp.Slug), zap.Error(err))
		}

		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			zap.L().Fatal("invalid seed price", zap.String("slug", sp.Slug), zap.Error(err))
		}
		p := &product.Product{
			Name:        sp.Name,
			Slug:        sp.Slug,
			Description: sp.Description,
			Price:       price,
			Stock:       sp.Stock,
			Status:      product.StatusOnline,
			CategoryID:  categoryIDs[sp.CategorySlug],
		}
		if err := productRepo.Create(ctx, p); err != nil {
			zap.L().Fatal("failed to create product", zap.String("slug", sp.Slug), zap.Error(err))
		}
		img := &product.Image{ProductID: p.ID, URL: productImageURL, Alt: sp.Name}
		if err := productRepo.AddImage(ctx, img); err != nil {
			zap.L().Fatal("failed to create product image", zap.String("slug", sp.Slug), zap.Error(err))
		}
		zap.L().Info("product created", zap.String("slug", sp.Slug), zap.Int64("id", p.ID))
	}

	zap.L().Info("seed completed")
}

func seedUser(ctx context.Context, repo user.Repository, username, password, role string) {
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		zap.L().Info("user exists, skipped", zap.String("username", username))
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		zap.L().Fatal("failed to look up user", zap.String("username", username), zap.Error(err))
	}

	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	u := &user.User{
		Username: username,
		Salt:     hex.EncodeToString(salt),
		Role:     role,
	}
	sum := sha256.Sum256([]byte(password + u.Salt))
	u.Password = hex.EncodeToString(sum[:])
	if err := repo.Create(ctx, u); err != nil {
		zap.L().Fatal("failed to create user", zap.String("username", username), zap.Error(err))
	}
	zap.L().Info("user created", zap.String("username", username), zap.String("role", role))
}
