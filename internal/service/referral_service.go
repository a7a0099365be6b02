package service

import (
	"errors"

	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"
	"billbuckz/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("cannot apply your own referral code")
)

// ReferralService credits referrers when referred users hit the invoice
// milestone, and handles referral-code application.
type ReferralService struct {
	db           *gorm.DB
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	log          *logger.Logger
}

func NewReferralService(db *gorm.DB, userRepo *repository.UserRepository, referralRepo *repository.ReferralRepository, log *logger.Logger) *ReferralService {
	return &ReferralService{db: db, userRepo: userRepo, referralRepo: referralRepo, log: log}
}

// RewardReferrer pays the referrer once the referred user's invoice count
// reaches exactly the milestone. Called after an invoice commit; any failure
// here is logged and swallowed so it can never fail the submission that
// triggered it.
//
// The equality check (== 5, not %5 or >=5) fires once per referred user: the
// 10th, 15th, ... invoices pay nothing.
func (s *ReferralService) RewardReferrer(userID uint) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.log.Errorf("[referral] load user %d: %v", userID, err)
		return
	}
	if user.ReferredBy == nil {
		return
	}

	var invoiceCount int64
	if err := s.db.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&invoiceCount).Error; err != nil {
		s.log.Errorf("[referral] count invoices for user %d: %v", userID, err)
		return
	}
	if invoiceCount != domain.ReferralRewardInvoices {
		return
	}
	// Belt-and-braces with the equality check: a payout that already exists
	// (say a backfilled invoice pushed the count back down to the milestone)
	// must not repeat.
	rewarded, err := s.referralRepo.HasRewardFor(userID)
	if err != nil {
		s.log.Errorf("[referral] check existing reward for user %d: %v", userID, err)
		return
	}
	if rewarded {
		return
	}

	reward := decimal.NewFromInt(domain.ReferralReward)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var referrer models.User
		if err := tx.Where("referral_code = ?", *user.ReferredBy).First(&referrer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling code: must not fail the invoice submission.
				s.log.Warnf("[referral] no referrer for code %q (user %d)", *user.ReferredBy, userID)
				return nil
			}
			return err
		}
		if referrer.ID == user.ID {
			return nil
		}
		credit := tx.Model(&models.User{}).
			Where("id = ?", referrer.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", reward))
		if credit.Error != nil {
			return credit.Error
		}
		if err := tx.Create(&models.ReferralHistory{
			UserID:         referrer.ID,
			ReferredUserID: user.ID,
			Amount:         reward,
		}).Error; err != nil {
			return err
		}
		s.log.Infof("[referral] credited %s to user %d for referred user %d", reward, referrer.ID, user.ID)
		return nil
	})
	if err != nil {
		s.log.Errorf("[referral] reward for user %d: %v", userID, err)
	}
}

// ApplyCode binds a referral code to the user, write-once. Unknown codes and
// self-referral are rejected; a second application returns
// repository.ErrAlreadyReferred.
func (s *ReferralService) ApplyCode(userID uint, code string) error {
	referrer, err := s.userRepo.GetByReferralCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidReferralCode
		}
		return err
	}
	if referrer.ID == userID {
		return ErrSelfReferral
	}
	return s.userRepo.SetReferredBy(userID, code)
}

// CheckCode validates a code on behalf of the given user, returning the
// referrer for display. Self-matches are excluded.
func (s *ReferralService) CheckCode(userID uint, code string) (*models.User, error) {
	referrer, err := s.userRepo.GetByReferralCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidReferralCode
		}
		return nil, err
	}
	if referrer.ID == userID {
		return nil, ErrInvalidReferralCode
	}
	return referrer, nil
}
