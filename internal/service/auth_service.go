package service

import (
	"errors"

	"billbuckz/config"
	"billbuckz/internal/auth"
	"billbuckz/internal/domain"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPhoneExists  = errors.New("phone number already registered")
	ErrInvalidCreds = errors.New("invalid phone number or password")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// Register creates the user with a fresh referral code. An optional referral
// code attributes the signup: it must belong to an existing user and is bound
// as referred_by at creation (write-once thereafter).
func (s *AuthService) Register(name, phone, password, referralCode string) (*models.User, string, string, error) {
	_, err := s.userRepo.GetByPhone(phone)
	if err == nil {
		return nil, "", "", ErrPhoneExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}

	var referredBy *string
	if referralCode != "" {
		if _, err := s.userRepo.GetByReferralCode(referralCode); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", "", ErrInvalidReferralCode
			}
			return nil, "", "", err
		}
		referredBy = &referralCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Name:         name,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		ReferredBy:   referredBy,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, refresh, err := s.tokens(u)
	return u, access, refresh, err
}

func (s *AuthService) Login(phone, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := s.tokens(u)
	return u, access, refresh, err
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.PhoneNumber, u.Role)
}

func (s *AuthService) tokens(u *models.User) (string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.PhoneNumber, u.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
