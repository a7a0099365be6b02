package handler

import (
	"errors"
	"net/http"

	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Profile returns the authenticated user.
// GET /me/profile
func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	AvatarURL   string `json:"avatar_url"`
}

// UpdateProfile changes name, phone, or avatar. The phone number must stay
// unique across users.
// PATCH /me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.PhoneNumber != "" && req.PhoneNumber != u.PhoneNumber {
		existing, err := h.userRepo.GetByPhone(req.PhoneNumber)
		if err == nil && existing.ID != userID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone number already in use"})
			return
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
			return
		}
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}
	c.JSON(http.StatusOK, u)
}
