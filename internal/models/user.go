package models

import (
	"time"

	"billbuckz/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:100;not null" json:"name"`
	PhoneNumber  string  `gorm:"uniqueIndex;size:15;not null" json:"phone_number"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	Role         string  `gorm:"size:20;not null;default:'USER'" json:"role"`
	AvatarURL    string  `gorm:"size:512" json:"avatar_url"`

	// Balance is the spendable ledger balance: sum of cashbacks and referral
	// rewards received minus all non-failed withdrawals. Mutated only via
	// atomic SQL expressions inside a transaction.
	Balance decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`

	// ReferralCode is assigned at registration and shared to attribute
	// signups. ReferredBy holds another user's code and is set at most once.
	ReferralCode string  `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	ReferredBy   *string `gorm:"size:16;index" json:"referred_by"`

	// NonMerchantBillCount is a monotonic per-user counter driving the
	// loyalty-tier reward for self-reported bills.
	NonMerchantBillCount int `gorm:"not null;default:0" json:"non_merchant_bill_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }
