package repositories

import (
	"errors"
	"fmt"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) filtered(filter ProductFilter) *gorm.DB {
	q := r.db.Model(&models.Product{}).Where("status = ?", models.StatusActive)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	return q
}

// Search returns one page of active listings matching the filter plus the
// total match count. Proximity filtering has no SQL-level index here: the
// non-geo predicates narrow the set in the database, then distance is
// computed, filtered and ordered in memory.
func (r *GORMProductRepository) Search(filter ProductFilter) ([]models.Product, int64, error) {
	if filter.HasGeo() {
		var candidates []models.Product
		if err := r.filtered(filter).Find(&candidates).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to search products: %w", err)
		}
		near := applyGeo(candidates, *filter.Lat, *filter.Lng, filter.DistanceKm)
		return paginate(near, filter.Page, filter.Limit), int64(len(near)), nil
	}

	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	order := "created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		order = "price ASC"
	case SortPriceDesc:
		order = "price DESC"
	case SortDateAsc:
		order = "created_at ASC"
	}

	products := []models.Product{}
	err := r.filtered(filter).
		Order(order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single listing by its ID, regardless of status.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetBySeller retrieves a seller's active listings, newest first.
func (r *GORMProductRepository) GetBySeller(sellerID string) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.
		Where("seller_id = ? AND status = ?", sellerID, models.StatusActive).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products for seller %s: %w", sellerID, err)
	}
	return products, nil
}

// Create creates a new listing in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists an existing listing and refreshes its updated_at.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Save doesn't return ErrRecordNotFound when the row is missing,
		// so we check RowsAffected.
		return fmt.Errorf("product %s for update: %w", product.ID, models.ErrNotFound)
	}
	return nil
}
