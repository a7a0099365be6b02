package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant is a cataloged partner store. Read-only from the ledger's
// perspective; coordinates are nullable because not every merchant is mapped.
type Merchant struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	Address     string         `gorm:"size:512" json:"address"`
	City        string         `gorm:"size:100;index" json:"city"`
	Phone       string         `gorm:"size:20" json:"phone"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	OpeningTime string         `gorm:"size:10" json:"opening_time"` // "09:00"
	ClosingTime string         `gorm:"size:10" json:"closing_time"`
	Rating      float64        `gorm:"default:0" json:"rating"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Merchant) TableName() string { return "merchants" }

// HasCoordinates reports whether the merchant can appear in nearby search.
func (m *Merchant) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}
