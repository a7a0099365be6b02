package service

import (
	"errors"
	"math/rand"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrImageRequired    = errors.New("invoice image is required")
	ErrMerchantRequired = errors.New("merchant id is required for merchant bills")
	ErrMerchantNotFound = errors.New("merchant not found")
)

// CashbackService owns the invoice-driven cashback ledger: whether a
// submission earns cashback, how much, and the atomic balance update.
type CashbackService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCashbackService(db *gorm.DB, log *logger.Logger) *CashbackService {
	return &CashbackService{db: db, log: log}
}

// InvoiceResult is what a submission returns to the caller.
type InvoiceResult struct {
	Invoice              *models.Invoice
	Cashback             *models.Cashback
	NonMerchantBillCount int
}

// CreateInvoice records the invoice and applies the cashback policy in one
// transaction:
//
//   - merchant bill, amount >= MerchantMinBillAmount: random cashback in
//     [MerchantCashbackMin, MerchantCashbackMax]
//   - merchant bill below the threshold: no cashback
//   - non-merchant bill: counter increment; flat NonMerchantReward when the
//     post-increment counter hits a multiple of NonMerchantRewardEvery
//
// The counter increment is a single SQL expression so that concurrent
// submissions serialize on the user row and each sees its own post-increment
// value; invoice, cashback and balance commit or roll back together.
func (s *CashbackService) CreateInvoice(userID uint, amount decimal.Decimal, isMerchant bool, merchantID *uint, imageURL string) (*InvoiceResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if imageURL == "" {
		return nil, ErrImageRequired
	}
	if isMerchant && merchantID == nil {
		return nil, ErrMerchantRequired
	}
	if !isMerchant {
		merchantID = nil
	}

	res := &InvoiceResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if merchantID != nil {
			var n int64
			if err := tx.Model(&models.Merchant{}).Where("id = ?", *merchantID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrMerchantNotFound
			}
		}
		inv := &models.Invoice{
			UserID:     userID,
			MerchantID: merchantID,
			Amount:     amount,
			IsMerchant: isMerchant,
			Status:     domain.InvoiceStatusPending,
			ImageURL:   imageURL,
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		res.Invoice = inv

		var reward decimal.Decimal
		var rewardType string

		if isMerchant {
			if amount.GreaterThanOrEqual(decimal.NewFromInt(domain.MerchantMinBillAmount)) {
				reward = decimal.NewFromInt(int64(randomRewardAmount()))
				rewardType = domain.CashbackTypeMerchant
			}
		} else {
			// Atomic increment-and-read: the UPDATE locks the user row for
			// the rest of the transaction, so two concurrent submissions
			// cannot both observe the same counter value.
			upd := tx.Model(&models.User{}).
				Where("id = ?", userID).
				UpdateColumn("non_merchant_bill_count", gorm.Expr("non_merchant_bill_count + 1"))
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			var u models.User
			if err := tx.Select("non_merchant_bill_count").First(&u, userID).Error; err != nil {
				return err
			}
			res.NonMerchantBillCount = u.NonMerchantBillCount
			if u.NonMerchantBillCount%domain.NonMerchantRewardEvery == 0 {
				reward = decimal.NewFromInt(domain.NonMerchantReward)
				rewardType = domain.CashbackTypeNonMerchant
			}
		}

		if rewardType == "" {
			return nil
		}
		cb := &models.Cashback{
			UserID:    userID,
			InvoiceID: inv.ID,
			Amount:    reward,
			Type:      rewardType,
		}
		if err := tx.Create(cb).Error; err != nil {
			return err
		}
		credit := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("balance", gorm.Expr("balance + ?", reward))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		res.Cashback = cb
		inv.Cashback = cb
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Cashback != nil {
		s.log.Infof("[cashback] user=%d invoice=%d type=%s amount=%s",
			userID, res.Invoice.ID, res.Cashback.Type, res.Cashback.Amount)
	}
	return res, nil
}

// randomRewardAmount draws uniformly over the closed integer interval
// [MerchantCashbackMin, MerchantCashbackMax]. The randomness is a product
// mechanic, not a security concern.
func randomRewardAmount() int {
	return domain.MerchantCashbackMin + rand.Intn(domain.MerchantCashbackMax-domain.MerchantCashbackMin+1)
}
