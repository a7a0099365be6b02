package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a submitted purchase bill. It is immutable after creation except
// for the status transition PENDING -> APPROVED | REJECTED performed by
// moderation.
type Invoice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	MerchantID *uint           `gorm:"index" json:"merchant_id"` // nil for self-reported non-merchant bills
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	IsMerchant bool            `gorm:"not null" json:"is_merchant"`
	Status     string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ImageURL   string          `gorm:"size:512;not null" json:"image_url"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Cashback *Cashback `gorm:"foreignKey:InvoiceID" json:"cashback,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }
