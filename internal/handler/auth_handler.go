package handler

import (
	"net/http"

	"billbuckz/internal/service"
	"billbuckz/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
	log *logger.Logger
}

func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	PhoneNumber  string `json:"phone_number" binding:"required,len=10,numeric"`
	Password     string `json:"password" binding:"required,min=8"`
	ReferralCode string `json:"referral_code"` // optional: referrer's code
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(req.Name, req.PhoneNumber, req.Password, req.ReferralCode)
	if err != nil {
		switch err {
		case service.ErrPhoneExists:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case service.ErrInvalidReferralCode:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Errorf("[auth] register failed: phone=%s err=%v", req.PhoneNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.PhoneNumber, req.Password)
	if err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorf("[auth] login failed: phone=%s err=%v", req.PhoneNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}
