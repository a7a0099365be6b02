package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cashback is a ledger credit earned by an invoice submission. At most one
// cashback exists per invoice (unique index); rows are never mutated.
type Cashback struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	InvoiceID uint            `gorm:"uniqueIndex;not null" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type      string          `gorm:"size:20;not null" json:"type"` // MERCHANT | NON_MERCHANT
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

func (Cashback) TableName() string { return "cashbacks" }
