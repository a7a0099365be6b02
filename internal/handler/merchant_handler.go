package handler

import (
	"net/http"
	"strconv"

	"billbuckz/config"
	"billbuckz/internal/models"
	"billbuckz/internal/repository"

	"github.com/gin-gonic/gin"
)

type MerchantHandler struct {
	cfg          *config.SearchConfig
	merchantRepo *repository.MerchantRepository
}

func NewMerchantHandler(cfg *config.SearchConfig, merchantRepo *repository.MerchantRepository) *MerchantHandler {
	return &MerchantHandler{cfg: cfg, merchantRepo: merchantRepo}
}

type createMerchantRequest struct {
	Name        string   `json:"name" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	Phone       string   `json:"phone" binding:"required"`
	City        string   `json:"city" binding:"required"`
	Category    string   `json:"category"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	OpeningTime string   `json:"opening_time"`
	ClosingTime string   `json:"closing_time"`
}

// Create adds a merchant to the catalog. Admin only.
// POST /admin/merchants
func (h *MerchantHandler) Create(c *gin.Context) {
	var req createMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.Merchant{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		City:        req.City,
		Category:    req.Category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	}
	if err := h.merchantRepo.Create(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create merchant"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Search is the invoice form's merchant picker: name substring, 10 results.
// GET /merchants/search?q=
func (h *MerchantHandler) Search(c *gin.Context) {
	merchants, err := h.merchantRepo.SearchByName(c.Query("q"), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search merchants"})
		return
	}
	c.JSON(http.StatusOK, merchants)
}

// Nearby returns merchants ordered by ascending distance from the caller,
// within the radius, optionally text-filtered. Without valid coordinates it
// degrades to an alphabetical listing with the same text filter.
// GET /merchants/nearby?lat=&lng=&q=&radius=&page=&limit=
func (h *MerchantHandler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", ""), 64)
	if err != nil || radius <= 0 {
		radius = h.cfg.DefaultRadiusKm
	}
	query := c.Query("q")
	page, limit := pagination(c)
	skip := (page - 1) * limit

	// (0,0) doubles as "no location" from clients that send zeroes.
	hasCoords := latErr == nil && lngErr == nil && (lat != 0 || lng != 0)

	if !hasCoords {
		merchants, total, err := h.merchantRepo.ListByName(query, limit, skip)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list merchants"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"merchants": merchants,
			"total":     total,
			"has_more":  int64(skip+len(merchants)) < total,
		})
		return
	}

	results, total, err := h.merchantRepo.Nearby(repository.NearbyFilters{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radius,
		Query:     query,
		Limit:     limit,
		Offset:    skip,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list merchants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"merchants": results,
		"total":     total,
		"has_more":  int64(skip+len(results)) < total,
	})
}
