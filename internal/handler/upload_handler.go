package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"billbuckz/config"
	"billbuckz/internal/middleware"
	"billbuckz/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cfg   *config.CloudinaryConfig
	cloud cloudinary.Client
}

func NewUploadHandler(cfg *config.CloudinaryConfig, cloud cloudinary.Client) *UploadHandler {
	return &UploadHandler{cfg: cfg, cloud: cloud}
}

// UploadInvoiceImage uploads the bill photo and returns its hosted URL. The
// client submits that URL with the invoice, keeping the slow external call
// outside the ledger transaction.
// POST /upload/invoice
func (h *UploadHandler) UploadInvoiceImage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	folder := h.cfg.UploadFolder + "/" + strconv.FormatUint(uint64(userID), 10)
	publicID := "inv_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
