package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"billbuckz/internal/domain"
	"billbuckz/internal/middleware"
	"billbuckz/internal/repository"
	"billbuckz/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	cashbackSvc *service.CashbackService
	referralSvc *service.ReferralService
	invoiceRepo *repository.InvoiceRepository
}

func NewInvoiceHandler(
	cashbackSvc *service.CashbackService,
	referralSvc *service.ReferralService,
	invoiceRepo *repository.InvoiceRepository,
) *InvoiceHandler {
	return &InvoiceHandler{
		cashbackSvc: cashbackSvc,
		referralSvc: referralSvc,
		invoiceRepo: invoiceRepo,
	}
}

type createInvoiceRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	IsMerchant *bool           `json:"is_merchant" binding:"required"`
	MerchantID *uint           `json:"merchant_id"`
	ImageURL   string          `json:"image_url" binding:"required,url"`
}

// Create submits an invoice and applies the cashback policy. The image must
// already be hosted (see UploadHandler); no external call happens inside the
// ledger transaction. The referral milestone check runs after the commit and
// never affects the response.
// POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.cashbackSvc.CreateInvoice(userID, req.Amount, *req.IsMerchant, req.MerchantID, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrImageRequired),
			errors.Is(err, service.ErrMerchantRequired),
			errors.Is(err, service.ErrMerchantNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create invoice"})
		}
		return
	}

	h.referralSvc.RewardReferrer(userID)

	c.JSON(http.StatusCreated, gin.H{
		"invoice":                 res.Invoice,
		"cashback":                res.Cashback,
		"non_merchant_bill_count": res.NonMerchantBillCount,
	})
}

// List returns the user's invoices: paginated, newest first, with status
// summary counts, a merchant/non-merchant split, and a hasMore flag.
// GET /invoices?page=&limit=
func (h *InvoiceHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := pagination(c)
	skip := (page - 1) * limit

	total, err := h.invoiceRepo.CountByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list invoices"})
		return
	}
	pending, _ := h.invoiceRepo.CountByUserAndStatus(userID, domain.InvoiceStatusPending)
	approved, _ := h.invoiceRepo.CountByUserAndStatus(userID, domain.InvoiceStatusApproved)
	rejected, _ := h.invoiceRepo.CountByUserAndStatus(userID, domain.InvoiceStatusRejected)
	merchantTotal, _ := h.invoiceRepo.CountByUserAndKind(userID, true)
	nonMerchantTotal, _ := h.invoiceRepo.CountByUserAndKind(userID, false)

	invoices, err := h.invoiceRepo.ListByUser(userID, limit, skip)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_invoices":    total,
		"pending_invoices":  pending,
		"approved_invoices": approved,
		"rejected_invoices": rejected,
		"invoices":          invoices,
		"pagination": gin.H{
			"page":                        page,
			"limit":                       limit,
			"has_more":                    int64(skip+len(invoices)) < total,
			"total_merchant_invoices":     merchantTotal,
			"total_non_merchant_invoices": nonMerchantTotal,
		},
	})
}

// Spending returns invoices and their amount total for a period:
// all (default), monthly, yearly, or custom with start/end dates.
// GET /invoices/spending?period=&start_date=&end_date=
func (h *InvoiceHandler) Spending(c *gin.Context) {
	userID := middleware.GetUserID(c)
	period := c.DefaultQuery("period", "all")
	now := time.Now()

	var from, to time.Time
	switch period {
	case "monthly":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 1, 0)
	case "yearly":
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(1, 0, 0)
	case "custom":
		var err1, err2 error
		from, err1 = time.Parse("2006-01-02", c.Query("start_date"))
		to, err2 = time.Parse("2006-01-02", c.Query("end_date"))
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "custom period requires start_date and end_date (YYYY-MM-DD)"})
			return
		}
	default:
		from = time.Time{}
		to = now.AddDate(100, 0, 0)
	}

	invoices, err := h.invoiceRepo.ListByUserBetween(userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list invoices"})
		return
	}
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "total": total, "period": period})
}

type moderateInvoiceRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// Moderate transitions a PENDING invoice to APPROVED or REJECTED. Admin only.
// PATCH /admin/invoices/:id/status
func (h *InvoiceHandler) Moderate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	var req moderateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	affected, err := h.invoiceRepo.UpdateStatus(uint(id), req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update invoice"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice is not pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// pagination reads page/limit query params with sane bounds.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}
