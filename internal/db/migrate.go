package db

import (
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Pocha{},
		&model.Menu{},
		&model.Order{},
		&model.OrderItem{},
		&model.PushEndpoint{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds a sample pocha with menus when the database is empty (development only)
func Seed() error {
	return seedSamplePocha(DB, time.Now())
}

func seedSamplePocha(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&model.Pocha{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Pocha already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding sample pocha...")

	pocha := model.Pocha{
		Title:       "KISA 포차",
		Description: "개발용 샘플 포차",
		StartDate:   now.Add(-time.Hour),
		EndDate:     now.Add(6 * time.Hour),
		Menus: []model.Menu{
			{NameKor: "떡볶이", NameEng: "Tteokbokki", Category: "Main", Price: 8, Stock: 50},
			{NameKor: "김치전", NameEng: "Kimchi Pancake", Category: "Main", Price: 9, Stock: 40},
			{NameKor: "콜라", NameEng: "Coke", Category: "Drink", Price: 2, Stock: 100, IsImmediatePrep: true},
			{NameKor: "막걸리", NameEng: "Makgeolli", Category: "Drink", Price: 10, Stock: 30, IsImmediatePrep: true, AgeCheckRequired: true},
		},
	}

	if err := db.Create(&pocha).Error; err != nil {
		logger.Error("Failed to create sample pocha", err)
		return err
	}

	logger.Info("Sample pocha seeded successfully", map[string]interface{}{
		"pocha_id":    pocha.ID,
		"menus_count": len(pocha.Menus),
	})
	return nil
}
