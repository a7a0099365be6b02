package handler

import (
	"errors"
	"net/http"
	"os"

	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"
	"billbuckz/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referralSvc  *service.ReferralService
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
}

func NewReferralHandler(
	referralSvc *service.ReferralService,
	userRepo *repository.UserRepository,
	referralRepo *repository.ReferralRepository,
) *ReferralHandler {
	return &ReferralHandler{referralSvc: referralSvc, userRepo: userRepo, referralRepo: referralRepo}
}

type applyReferralRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

// Apply binds a referral code to the authenticated user, first-referral-wins.
// POST /referral/apply
func (h *ReferralHandler) Apply(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req applyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referral code is required"})
		return
	}
	if err := h.referralSvc.ApplyCode(userID, req.ReferralCode); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReferralCode),
			errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrAlreadyReferred):
			c.JSON(http.StatusBadRequest, gin.H{"error": "you have already used a referral code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply referral code"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "referral code applied"})
}

// Status returns the user's code, referred-user count, reward history, and
// who referred them.
// GET /referral/status
func (h *ReferralHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	referredCount, err := h.userRepo.CountReferredBy(u.ReferralCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load referral status"})
		return
	}
	history, err := h.referralRepo.ListByReferrer(userID, 50, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load referral status"})
		return
	}

	var referredBy gin.H
	if u.ReferredBy != nil {
		if referrer, err := h.userRepo.GetByReferralCode(*u.ReferredBy); err == nil {
			referredBy = gin.H{"id": referrer.ID, "name": referrer.Name}
		}
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "https://billbuckz.app"
	}
	c.JSON(http.StatusOK, gin.H{
		"referral_code":        u.ReferralCode,
		"balance":              u.Balance,
		"referred_by":          referredBy,
		"referred_users_count": referredCount,
		"referral_history":     history,
		"referral_link":        appURL + "/register?ref=" + u.ReferralCode,
	})
}

// Check validates a code for display before applying it. Always 200; the
// verdict is in the body.
// GET /referral/check?code=
func (h *ReferralHandler) Check(c *gin.Context) {
	userID := middleware.GetUserID(c)
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": "referral code is required"})
		return
	}
	referrer, err := h.referralSvc.CheckCode(userID, code)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": "invalid referral code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"referrer": gin.H{"id": referrer.ID, "name": referrer.Name},
	})
}
