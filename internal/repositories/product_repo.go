package repositories

import (
	"lapak/internal/models"
)

// Sort orders accepted by ProductFilter. When a proximity point is set the
// result is ordered by ascending distance instead and Sort is ignored.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDateAsc   = "date_asc"
	SortDateDesc  = "date_desc"
)

// ProductFilter describes one catalog search. Pointer fields are nil when the
// caller did not supply them.
type ProductFilter struct {
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Lat        *float64
	Lng        *float64
	DistanceKm int
	Sort       string
	Page       int
	Limit      int
}

// HasGeo reports whether the filter carries a complete proximity point.
func (f ProductFilter) HasGeo() bool {
	return f.Lat != nil && f.Lng != nil
}

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	// Search returns one page of active listings plus the total match count.
	Search(filter ProductFilter) ([]models.Product, int64, error)
	// GetByID returns a listing in any status, or models.ErrNotFound.
	GetByID(id string) (*models.Product, error)
	// GetBySeller returns a seller's active listings, newest first.
	GetBySeller(sellerID string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
}
