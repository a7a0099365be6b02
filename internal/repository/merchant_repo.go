package repository

import (
	"math"
	"sort"
	"strings"

	"billbuckz/internal/models"
	"billbuckz/pkg/geo"

	"gorm.io/gorm"
)

// NearbyFilters parameterizes the nearby-merchant search.
type NearbyFilters struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Query     string // case-insensitive substring over name/address/city/category
	Limit     int
	Offset    int
}

// NearbyResult is a merchant enriched with its computed distance.
type NearbyResult struct {
	models.Merchant
	DistanceKm float64 `json:"distance_km"`
}

type MerchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) Create(m *models.Merchant) error {
	return r.db.Create(m).Error
}

func (r *MerchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var m models.Merchant
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SearchByName returns up to limit merchants whose name contains the query,
// ordered alphabetically. Used by the invoice form's merchant picker.
func (r *MerchantRepository) SearchByName(query string, limit int) ([]models.Merchant, error) {
	var list []models.Merchant
	err := r.db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("name ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func textFilter(q *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return q
	}
	pat := "%" + strings.ToLower(query) + "%"
	return q.Where(
		"LOWER(name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ? OR LOWER(category) LIKE ?",
		pat, pat, pat, pat,
	)
}

// Nearby returns merchants within f.RadiusKm of the given point, ordered by
// ascending distance, paginated. Distance is computed in the application layer
// after a bounding-box prefilter; only merchants with known coordinates
// qualify. The returned total counts all matches, not just the page.
func (r *MerchantRepository) Nearby(f NearbyFilters) ([]NearbyResult, int64, error) {
	// Bounding-box prefilter: 1 degree latitude ~ 111km. The longitude delta
	// widens toward the poles; cap it to a full scan near them.
	latDelta := f.RadiusKm / 111.0
	lngDelta := 180.0
	if cosLat := math.Cos(f.Latitude * math.Pi / 180); cosLat > 0.01 {
		lngDelta = math.Min(180, latDelta/cosLat)
	}

	q := r.db.Model(&models.Merchant{}).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", f.Latitude-latDelta, f.Latitude+latDelta)
	if lngDelta < 180 {
		minLng, maxLng := f.Longitude-lngDelta, f.Longitude+lngDelta
		switch {
		case minLng < -180:
			// Box crosses the antimeridian westward: wrap the overshoot.
			q = q.Where("(longitude BETWEEN ? AND ? OR longitude BETWEEN ? AND ?)",
				-180.0, maxLng, minLng+360, 180.0)
		case maxLng > 180:
			q = q.Where("(longitude BETWEEN ? AND ? OR longitude BETWEEN ? AND ?)",
				minLng, 180.0, -180.0, maxLng-360)
		default:
			q = q.Where("longitude BETWEEN ? AND ?", minLng, maxLng)
		}
	}
	q = textFilter(q, f.Query)

	var candidates []models.Merchant
	if err := q.Find(&candidates).Error; err != nil {
		return nil, 0, err
	}

	results := make([]NearbyResult, 0, len(candidates))
	for _, m := range candidates {
		d := geo.DistanceKm(f.Latitude, f.Longitude, *m.Latitude, *m.Longitude)
		if d <= f.RadiusKm {
			results = append(results, NearbyResult{Merchant: m, DistanceKm: d})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })

	total := int64(len(results))
	if f.Offset >= len(results) {
		return []NearbyResult{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(results) {
		end = len(results)
	}
	return results[f.Offset:end], total, nil
}

// ListByName is the no-coordinates fallback: same text filter, alphabetical
// order, no distance fields.
func (r *MerchantRepository) ListByName(query string, limit, offset int) ([]models.Merchant, int64, error) {
	var total int64
	if err := textFilter(r.db.Model(&models.Merchant{}), query).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Merchant
	err := textFilter(r.db.Model(&models.Merchant{}), query).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}
