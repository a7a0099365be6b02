package service

import (
	"testing"

	"billbuckz/internal/database"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"
	"billbuckz/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// A single in-memory sqlite connection; a second pooled connection would
	// see an empty database.
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger() *logger.Logger {
	return logger.New()
}

func createTestUser(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Test User",
		PhoneNumber:  phone,
		PasswordHash: "x",
	}
	if err := repository.NewUserRepository(db).Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &u
}

func setBalance(t *testing.T, db *gorm.DB, id uint, amount string) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("id = ?", id).
		Update("balance", decimal.RequireFromString(amount)).Error; err != nil {
		t.Fatalf("set balance: %v", err)
	}
}
