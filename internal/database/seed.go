package database

import (
	"errors"
	"os"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"
	"billbuckz/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin ensures an admin account exists when ADMIN_PHONE and
// ADMIN_PASSWORD are set. Skipped otherwise.
func SeedAdmin(db *gorm.DB, log *logger.Logger) {
	phone := os.Getenv("ADMIN_PHONE")
	password := os.Getenv("ADMIN_PASSWORD")
	if phone == "" || password == "" {
		return
	}

	var existing models.User
	err := db.Where("phone_number = ?", phone).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[seed] admin lookup: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("[seed] hash admin password: %v", err)
		return
	}
	admin := &models.User{
		Name:         "Admin",
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := repository.NewUserRepository(db).Create(admin); err != nil {
		log.Errorf("[seed] create admin: %v", err)
		return
	}
	log.Infof("[seed] admin user created (phone %s)", phone)
}
