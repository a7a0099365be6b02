package handler

import (
	"errors"
	"net/http"
	"strconv"

	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"
	"billbuckz/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WithdrawalHandler struct {
	walletSvc      *service.WalletService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(walletSvc *service.WalletService, withdrawalRepo *repository.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{walletSvc: walletSvc, withdrawalRepo: withdrawalRepo}
}

type createWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	UpiID  string          `json:"upi_id" binding:"required"`
}

// Create requests a UPI payout. The balance is debited immediately; the
// withdrawal stays PENDING until resolved.
// POST /wallet/withdraw
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.walletSvc.RequestWithdrawal(userID, req.Amount, req.UpiID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInvalidUpiID),
			errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process withdrawal"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "withdrawal": w})
}

// List returns the user's withdrawals, newest first.
// GET /wallet/withdrawals?page=&limit=
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pagination(c)
	list, err := h.withdrawalRepo.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, list)
}

type resolveWithdrawalRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED FAILED"`
}

// Resolve settles a pending withdrawal. Admin only; COMPLETED disburses over
// UPI, FAILED refunds the reserved amount.
// PATCH /admin/withdrawals/:id/status
func (h *WithdrawalHandler) Resolve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}
	var req resolveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.walletSvc.ResolveWithdrawal(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotPending), errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve withdrawal"})
		}
		return
	}
	c.JSON(http.StatusOK, w)
}
