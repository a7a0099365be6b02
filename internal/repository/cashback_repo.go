package repository

import (
	"billbuckz/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashbackRepository struct {
	db *gorm.DB
}

func NewCashbackRepository(db *gorm.DB) *CashbackRepository {
	return &CashbackRepository{db: db}
}

// ListByUser returns newest-first cashbacks with invoice and merchant context.
func (r *CashbackRepository) ListByUser(userID uint, limit, offset int) ([]models.Cashback, error) {
	var list []models.Cashback
	err := r.db.Where("user_id = ?", userID).
		Preload("Invoice").
		Preload("Invoice.Merchant").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *CashbackRepository) SumByUser(userID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&models.Cashback{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
