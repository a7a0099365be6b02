package repository

import (
	"billbuckz/internal/domain"
	"billbuckz/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByOrderID(orderID string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.Where("order_id = ?", orderID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByUser(userID uint, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) SumByUserAndStatus(userID uint, status string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status = ?", userID, status).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumNonFailedByUser is the debit side of the balance identity: every
// withdrawal that has not failed has already been reserved from the balance.
func (r *WithdrawalRepository) SumNonFailedByUser(userID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status <> ?", userID, domain.WithdrawalStatusFailed).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
