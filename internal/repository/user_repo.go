package repository

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"billbuckz/internal/models"

	"gorm.io/gorm"
)

var ErrAlreadyReferred = errors.New("referral code already applied")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GenerateReferralCode returns an 8-character lowercase hex code.
func GenerateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create inserts the user, assigning a unique referral code with retry on
// collision. Only duplicate-key errors on the referral code are retried; a
// duplicate phone or any other failure returns as-is.
func (r *UserRepository) Create(u *models.User) error {
	for i := 0; i < 10; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			return err
		}
		u.ReferralCode = code
		err = r.db.Create(u).Error
		if err == nil {
			return nil
		}
		if !isReferralCodeCollision(err) {
			return err
		}
		u.ID = 0
	}
	return fmt.Errorf("failed to assign a unique referral code after retries")
}

// isReferralCodeCollision matches the unique-index violation on referral_code
// by index name, which both the mysql and sqlite drivers include in the error.
func isReferralCodeCollision(err error) bool {
	return err != nil && strings.Contains(err.Error(), "referral_code")
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("phone_number = ?", phone).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("referral_code = ?", code).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// SetReferredBy binds the referrer's code to the user, first-referral-wins.
// The guard on "referred_by IS NULL" makes concurrent applications race-safe:
// exactly one conditional update can match.
func (r *UserRepository) SetReferredBy(userID uint, code string) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND referred_by IS NULL", userID).
		Update("referred_by", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyReferred
	}
	return nil
}

// CountReferredBy returns how many users registered with the given code.
func (r *UserRepository) CountReferredBy(code string) (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("referred_by = ?", code).Count(&n).Error
	return n, err
}
