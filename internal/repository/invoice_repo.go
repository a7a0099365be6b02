package repository

import (
	"time"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Preload("Merchant").Preload("Cashback").First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) CountByUser(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *InvoiceRepository) CountByUserAndStatus(userID uint, status string) (int64, error) {
	var n int64
	err := r.db.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, status).Count(&n).Error
	return n, err
}

func (r *InvoiceRepository) CountByUserAndKind(userID uint, isMerchant bool) (int64, error) {
	var n int64
	err := r.db.Model(&models.Invoice{}).
		Where("user_id = ? AND is_merchant = ?", userID, isMerchant).Count(&n).Error
	return n, err
}

// ListByUser returns newest-first invoices with merchant and cashback preloaded.
func (r *InvoiceRepository) ListByUser(userID uint, limit, offset int) ([]models.Invoice, error) {
	var list []models.Invoice
	err := r.db.Where("user_id = ?", userID).
		Preload("Merchant").
		Preload("Cashback").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListByUserBetween returns invoices created in [from, to), newest first.
func (r *InvoiceRepository) ListByUserBetween(userID uint, from, to time.Time) ([]models.Invoice, error) {
	var list []models.Invoice
	err := r.db.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Preload("Merchant").
		Preload("Cashback").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// UpdateStatus performs the moderation transition. Only PENDING invoices move.
func (r *InvoiceRepository) UpdateStatus(id uint, status string) (int64, error) {
	res := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, domain.InvoiceStatusPending).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// ApprovedMerchantStats returns the count and amount sum of approved merchant
// bills, the inputs to pay-later eligibility.
func (r *InvoiceRepository) ApprovedMerchantStats(userID uint) (int64, decimal.Decimal, error) {
	var n int64
	if err := r.db.Model(&models.Invoice{}).
		Where("user_id = ? AND is_merchant = ? AND status = ?", userID, true, domain.InvoiceStatusApproved).
		Count(&n).Error; err != nil {
		return 0, decimal.Zero, err
	}
	var total decimal.Decimal
	row := r.db.Model(&models.Invoice{}).
		Where("user_id = ? AND is_merchant = ? AND status = ?", userID, true, domain.InvoiceStatusApproved).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, decimal.Zero, err
	}
	return n, total, nil
}
