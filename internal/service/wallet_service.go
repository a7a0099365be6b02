package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"
	"billbuckz/pkg/logger"
	"billbuckz/pkg/payout"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvalidUpiID         = errors.New("invalid UPI id")
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
	ErrInvalidStatus        = errors.New("invalid withdrawal status")
)

// WalletService owns withdrawal requests and the wallet summary.
type WalletService struct {
	db             *gorm.DB
	cashbackRepo   *repository.CashbackRepository
	referralRepo   *repository.ReferralRepository
	withdrawalRepo *repository.WithdrawalRepository
	payoutProvider payout.Provider
	log            *logger.Logger
}

func NewWalletService(
	db *gorm.DB,
	cashbackRepo *repository.CashbackRepository,
	referralRepo *repository.ReferralRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	payoutProvider payout.Provider,
	log *logger.Logger,
) *WalletService {
	return &WalletService{
		db:             db,
		cashbackRepo:   cashbackRepo,
		referralRepo:   referralRepo,
		withdrawalRepo: withdrawalRepo,
		payoutProvider: payoutProvider,
		log:            log,
	}
}

// RequestWithdrawal reserves the amount from the user's balance and records a
// PENDING withdrawal, atomically. The balance check and debit are one
// conditional UPDATE, so concurrent requests cannot drive the balance
// negative: at most one of two competing debits can match balance >= amount.
func (s *WalletService) RequestWithdrawal(userID uint, amount decimal.Decimal, upiID string) (*models.Withdrawal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if !strings.Contains(upiID, "@") {
		return nil, ErrInvalidUpiID
	}

	var w *models.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		debit := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		w = &models.Withdrawal{
			UserID:  userID,
			OrderID: fmt.Sprintf("wd-%s", uuid.New().String()),
			Amount:  amount,
			UpiID:   upiID,
			Status:  domain.WithdrawalStatusPending,
		}
		return tx.Create(w).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("[withdrawal] user=%d order=%s amount=%s", userID, w.OrderID, amount)
	return w, nil
}

// ResolveWithdrawal moves a PENDING withdrawal to COMPLETED or FAILED. A
// FAILED transition refunds the reserved amount in the same transaction,
// restoring the balance identity (credits minus non-failed withdrawals). A
// COMPLETED transition sends the disbursement through the payout provider
// after the commit: the provider call is external I/O and must not hold row
// locks. If it fails, the withdrawal goes back to PENDING so the admin can
// retry; the provider's OrderID idempotency makes a retried disbursement safe.
func (s *WalletService) ResolveWithdrawal(ctx context.Context, id uint, status string) (*models.Withdrawal, error) {
	if status != domain.WithdrawalStatusCompleted && status != domain.WithdrawalStatusFailed {
		return nil, ErrInvalidStatus
	}
	var w models.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		upd := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", id, domain.WithdrawalStatusPending).
			Update("status", status)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			if err := tx.First(&w, id).Error; err != nil {
				return err
			}
			return ErrWithdrawalNotPending
		}
		if err := tx.First(&w, id).Error; err != nil {
			return err
		}
		if status == domain.WithdrawalStatusFailed {
			refund := tx.Model(&models.User{}).
				Where("id = ?", w.UserID).
				UpdateColumn("balance", gorm.Expr("balance + ?", w.Amount))
			if refund.Error != nil {
				return refund.Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == domain.WithdrawalStatusCompleted {
		res, err := s.payoutProvider.Disburse(ctx, payout.Request{
			OrderID: w.OrderID,
			UpiID:   w.UpiID,
			Amount:  w.Amount.StringFixed(2),
		})
		if err != nil {
			s.log.Errorf("[withdrawal] disburse order=%s: %v", w.OrderID, err)
			revert := s.db.Model(&models.Withdrawal{}).
				Where("id = ?", w.ID).
				Update("status", domain.WithdrawalStatusPending)
			if revert.Error != nil {
				s.log.Errorf("[withdrawal] revert order=%s to pending: %v", w.OrderID, revert.Error)
			}
			return nil, err
		}
		w.PayoutRef = res.Reference
		if err := s.db.Model(&models.Withdrawal{}).
			Where("id = ?", w.ID).
			Update("payout_ref", res.Reference).Error; err != nil {
			// Money is out; the reference is recoverable from the provider.
			s.log.Errorf("[withdrawal] persist payout ref for order=%s: %v", w.OrderID, err)
		}
	}
	s.log.Infof("[withdrawal] order=%s -> %s", w.OrderID, status)
	return &w, nil
}

// Summary aggregates the user's ledger for the wallet screen.
type WalletSummary struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalEarned        decimal.Decimal `json:"total_earned"`
	TotalWithdrawn     decimal.Decimal `json:"total_withdrawn"`
	PendingWithdrawals decimal.Decimal `json:"pending_withdrawals"`
}

func (s *WalletService) Summary(user *models.User) (*WalletSummary, error) {
	cashbacks, err := s.cashbackRepo.SumByUser(user.ID)
	if err != nil {
		return nil, err
	}
	referrals, err := s.referralRepo.SumByReferrer(user.ID)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.withdrawalRepo.SumByUserAndStatus(user.ID, domain.WithdrawalStatusCompleted)
	if err != nil {
		return nil, err
	}
	pending, err := s.withdrawalRepo.SumByUserAndStatus(user.ID, domain.WithdrawalStatusPending)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{
		Balance:            user.Balance,
		TotalEarned:        cashbacks.Add(referrals),
		TotalWithdrawn:     withdrawn,
		PendingWithdrawals: pending,
	}, nil
}
