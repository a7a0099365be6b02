package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Withdrawal is a UPI payout request. The user's balance is debited when the
// row is created (optimistic reservation); a FAILED transition refunds it.
type Withdrawal struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	OrderID   string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	UpiID     string          `gorm:"size:64;not null" json:"upi_id"`
	Status    string          `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	PayoutRef string          `gorm:"size:64" json:"payout_ref,omitempty"`  // provider reference, set on completion
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
