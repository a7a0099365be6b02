package handler

import (
	"net/http"
	"time"

	"billbuckz/internal/domain"
	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PayLaterHandler struct {
	userRepo    *repository.UserRepository
	invoiceRepo *repository.InvoiceRepository
}

func NewPayLaterHandler(userRepo *repository.UserRepository, invoiceRepo *repository.InvoiceRepository) *PayLaterHandler {
	return &PayLaterHandler{userRepo: userRepo, invoiceRepo: invoiceRepo}
}

// Eligibility scores the user for pay-later from approved merchant bills:
// invoice count, total spend, and account age must all clear their
// thresholds. The credit limit is 30% of total spend, capped and rounded down
// to the nearest thousand.
// GET /paylater/eligibility
func (h *PayLaterHandler) Eligibility(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	count, total, err := h.invoiceRepo.ApprovedMerchantStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check eligibility"})
		return
	}
	daysRegistered := int(time.Since(u.CreatedAt).Hours() / 24)

	criteria := gin.H{
		"invoices": gin.H{
			"met":      count >= domain.PayLaterMinInvoices,
			"current":  count,
			"required": domain.PayLaterMinInvoices,
		},
		"amount": gin.H{
			"met":      total.GreaterThanOrEqual(decimal.NewFromInt(domain.PayLaterMinSpend)),
			"current":  total,
			"required": domain.PayLaterMinSpend,
		},
		"days": gin.H{
			"met":      daysRegistered >= domain.PayLaterMinAccountDays,
			"current":  daysRegistered,
			"required": domain.PayLaterMinAccountDays,
		},
	}
	eligible := count >= domain.PayLaterMinInvoices &&
		total.GreaterThanOrEqual(decimal.NewFromInt(domain.PayLaterMinSpend)) &&
		daysRegistered >= domain.PayLaterMinAccountDays

	creditLimit := int64(0)
	if eligible {
		limit := total.Mul(decimal.NewFromFloat(0.3)).IntPart()
		if limit > domain.PayLaterMaxCreditLimit {
			limit = domain.PayLaterMaxCreditLimit
		}
		creditLimit = limit / 1000 * 1000
	}

	c.JSON(http.StatusOK, gin.H{
		"is_eligible":      eligible,
		"total_invoices":   count,
		"total_amount":     total,
		"days_registered":  daysRegistered,
		"credit_limit":     creditLimit,
		"available_credit": creditLimit,
		"criteria":         criteria,
	})
}
