package handler

import (
	"net/http"

	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"
	"billbuckz/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletSvc      *service.WalletService
	userRepo       *repository.UserRepository
	cashbackRepo   *repository.CashbackRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWalletHandler(
	walletSvc *service.WalletService,
	userRepo *repository.UserRepository,
	cashbackRepo *repository.CashbackRepository,
	withdrawalRepo *repository.WithdrawalRepository,
) *WalletHandler {
	return &WalletHandler{
		walletSvc:      walletSvc,
		userRepo:       userRepo,
		cashbackRepo:   cashbackRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// Summary returns the wallet screen payload: balance, lifetime earned and
// withdrawn totals, pending reservations, and recent activity.
// GET /wallet
func (h *WalletHandler) Summary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	summary, err := h.walletSvc.Summary(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wallet"})
		return
	}
	recentCashbacks, err := h.cashbackRepo.ListByUser(userID, 10, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wallet"})
		return
	}
	recentWithdrawals, err := h.withdrawalRepo.ListByUser(userID, 10, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load wallet"})
		return
	}

	cashbacks := make([]gin.H, 0, len(recentCashbacks))
	for _, cb := range recentCashbacks {
		merchantName := "Non-Merchant Bill"
		if cb.Invoice.Merchant != nil {
			merchantName = cb.Invoice.Merchant.Name
		}
		cashbacks = append(cashbacks, gin.H{
			"id":            cb.ID,
			"amount":        cb.Amount,
			"type":          cb.Type,
			"merchant_name": merchantName,
			"created_at":    cb.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        gin.H{"id": u.ID, "name": u.Name},
		"wallet":      summary,
		"cashbacks":   cashbacks,
		"withdrawals": recentWithdrawals,
	})
}

// Cashbacks lists the user's cashbacks, newest first.
// GET /wallet/cashbacks?page=&limit=
func (h *WalletHandler) Cashbacks(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pagination(c)
	list, err := h.cashbackRepo.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list cashbacks"})
		return
	}
	c.JSON(http.StatusOK, list)
}
