package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralHistory records one referral reward payout. Append-only.
type ReferralHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"` // the referrer who was credited
	ReferredUserID uint            `gorm:"not null;index" json:"referred_user_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`

	User         User `gorm:"foreignKey:UserID" json:"-"`
	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (ReferralHistory) TableName() string { return "referral_histories" }
