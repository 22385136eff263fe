package main

import (
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
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

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 示例商品
	products := []models.Product{
		{
			Name:          "Wireless Bluetooth Earphones",
			Description:   "High quality sound, long battery life, comfortable to wear.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			StockQuantity: 50,
			Image:         "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			IsActive:      true,
		},
		{
			Name:          "Smart Watch",
			Description:   "Heart rate monitoring, sleep tracking, water resistant.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(159.00)),
			StockQuantity: 30,
			Image:         "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800",
			IsActive:      true,
		},
		{
			Name:          "Portable Power Bank 20000mAh",
			Description:   "Fast charging, dual USB output, compact design.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(39.90)),
			StockQuantity: 100,
			Image:         "https://images.unsplash.com/photo-1609592424117-599ef08f3202?w=800",
			IsActive:      true,
		},
		{
			Name:          "Mechanical Keyboard",
			Description:   "Hot-swappable switches, RGB backlight, aluminium frame.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(129.00)),
			StockQuantity: 25,
			Image:         "https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=800",
			IsActive:      true,
		},
		{
			Name:          "USB-C Hub 7-in-1",
			Description:   "HDMI, SD card reader, USB 3.0 x3, PD charging.",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(45.50)),
			StockQuantity: 80,
			Image:         "https://images.unsplash.com/photo-1625895197185-efcec01cffe0?w=800",
			IsActive:      true,
		},
	}

	for _, p := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", p.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", p.Name, err)
			} else {
				stdLog.Printf("Created product: %s", p.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", p.Name)
		}
	}

	stdLog.Printf("Seed finished")
}
