package repository

import (
	"billbuckz/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// ListByReferrer returns reward payouts earned by the given user, newest
// first, with the referred user preloaded.
func (r *ReferralRepository) ListByReferrer(userID uint, limit, offset int) ([]models.ReferralHistory, error) {
	var list []models.ReferralHistory
	err := r.db.Where("user_id = ?", userID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *ReferralRepository) SumByReferrer(userID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&models.ReferralHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// HasRewardFor reports whether a payout already exists for the given referred
// user. Belt-and-braces alongside the count == threshold equality check.
func (r *ReferralRepository) HasRewardFor(referredUserID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.ReferralHistory{}).
		Where("referred_user_id = ?", referredUserID).Count(&n).Error
	return n > 0, err
}
