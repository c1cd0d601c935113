package models

import "time"

// ProductStatus is the lifecycle state of a listing.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusSold     ProductStatus = "sold"
	StatusInactive ProductStatus = "inactive"
)

// CanTransition reports whether a listing may move from s to the given status.
// Allowed moves are active -> sold and active <-> inactive; re-applying the
// current status is always allowed. A sold listing stays sold.
func (s ProductStatus) CanTransition(to ProductStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case StatusActive:
		return to == StatusSold || to == StatusInactive
	case StatusInactive:
		return to == StatusActive
	default:
		return false
	}
}

// Location is a geographic point plus a human-readable address.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type" gorm:"type:varchar(16);default:Point"`
	Coordinates []float64 `json:"coordinates" gorm:"serializer:json;type:text"`
	Address     string    `json:"address" gorm:"type:varchar(255)"`
}

// Lng returns the longitude component, or 0 if coordinates are malformed.
func (l Location) Lng() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[0]
}

// Lat returns the latitude component, or 0 if coordinates are malformed.
func (l Location) Lat() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[1]
}

// Product represents a marketplace listing. A listing belongs to exactly one
// seller and is never physically deleted; deactivation flips Status instead.
type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string        `json:"title" gorm:"type:varchar(100)"`
	Description string        `json:"description" gorm:"type:varchar(1000)"`
	Price       float64       `json:"price"`
	Category    string        `json:"category" gorm:"type:varchar(100);index"`
	Location    Location      `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Images      []string      `json:"images" gorm:"serializer:json;type:text"`
	Quantity    int           `json:"quantity" gorm:"default:1"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(16);default:active;index"`
	SellerID    string        `json:"sellerId" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
