package services

import (
	"fmt"
	"log"
	"math"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/rabbitmq"

	"github.com/google/uuid"
)

// ProductService handles catalog queries and ownership-gated mutations.
type ProductService struct {
	productRepo repositories.ProductRepository
	users       *UserService
	mqClient    *rabbitmq.Client // nil disables event publishing
}

// NewProductService creates a new ProductService.
func NewProductService(productRepo repositories.ProductRepository, users *UserService, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		users:       users,
		mqClient:    mqClient,
	}
}

// SellerSummary is the slice of an owner profile embedded in product
// responses. How much of it is filled depends on the operation.
type SellerSummary struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	IdentityUID string `json:"identityUid,omitempty"`
}

// ProductView is a listing with its seller reference expanded.
type ProductView struct {
	models.Product
	Seller SellerSummary `json:"seller"`
}

// Pagination describes one page of a catalog search result.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
// There is deliberately no seller field: a listing can never be reassigned.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Location    *models.Location
	Images      []string
	Quantity    *int
	Status      *models.ProductStatus
}

// OwnerRef identifies a seller either by internal id or by external identity
// subject. The caller decides which form it holds; the service never guesses.
type OwnerRef struct {
	ID          string
	IdentityUID string
}

// CreateProduct persists a new active listing owned by the resolved identity
// and returns it with the seller expanded to {id, name}.
func (s *ProductService) CreateProduct(identity models.Identity, product *models.Product) (*ProductView, error) {
	resolved, err := s.users.ResolveOwner(identity)
	if err != nil {
		return nil, err
	}

	product.ID = uuid.New().String()
	product.SellerID = resolved.Owner.ID
	product.Status = models.StatusActive
	if product.Location.Type == "" {
		product.Location.Type = "Point"
	}
	if product.Quantity == 0 {
		product.Quantity = 1
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.publishEvent(rabbitmq.EventListingCreated, product)

	return &ProductView{
		Product: *product,
		Seller:  SellerSummary{ID: resolved.Owner.ID, Name: resolved.Owner.Name},
	}, nil
}

// ListProducts runs a filtered catalog search over active listings and
// expands each seller to {id, name}.
func (s *ProductService) ListProducts(filter repositories.ProductFilter) ([]ProductView, Pagination, error) {
	products, total, err := s.productRepo.Search(filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list products: %w", err)
	}

	page := Pagination{
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	return s.expandSellers(products), page, nil
}

// GetProduct returns a listing in any status with the seller expanded to its
// full public shape.
func (s *ProductService) GetProduct(id string) (*ProductView, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	view := &ProductView{Product: *product}
	seller, err := s.users.GetByID(product.SellerID)
	if err != nil {
		log.Printf("Seller %s of product %s could not be loaded: %v", product.SellerID, id, err)
		return view, nil
	}
	view.Seller = SellerSummary{
		ID:          seller.ID,
		Name:        seller.Name,
		Email:       seller.Email,
		IdentityUID: seller.IdentityUID,
	}
	return view, nil
}

// UpdateProduct applies a partial update to a listing owned by the resolved
// identity. Unknown ids fail with models.ErrNotFound, foreign listings with
// models.ErrForbidden, and status changes must follow the listing state
// machine. On any failure the stored listing is left unchanged.
func (s *ProductService) UpdateProduct(identity models.Identity, id string, update ProductUpdate) (*ProductView, error) {
	resolved, err := s.users.ResolveOwner(identity)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != resolved.Owner.ID {
		return nil, fmt.Errorf("product %s is not owned by %s: %w", id, resolved.Owner.ID, models.ErrForbidden)
	}

	if update.Title != nil {
		product.Title = *update.Title
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Location != nil {
		product.Location = *update.Location
		if product.Location.Type == "" {
			product.Location.Type = "Point"
		}
	}
	if update.Images != nil {
		product.Images = update.Images
	}
	if update.Quantity != nil {
		product.Quantity = *update.Quantity
	}
	if update.Status != nil {
		if !product.Status.CanTransition(*update.Status) {
			return nil, models.NewValidationError("status",
				fmt.Sprintf("cannot change status from %s to %s", product.Status, *update.Status))
		}
		product.Status = *update.Status
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.publishEvent(rabbitmq.EventListingUpdated, product)

	return &ProductView{
		Product: *product,
		Seller:  SellerSummary{ID: resolved.Owner.ID, Name: resolved.Owner.Name},
	}, nil
}

// DeactivateProduct soft-deletes a listing owned by the resolved identity.
// Idempotent: deactivating an already-inactive listing is a no-op.
func (s *ProductService) DeactivateProduct(identity models.Identity, id string) error {
	resolved, err := s.users.ResolveOwner(identity)
	if err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product.SellerID != resolved.Owner.ID {
		return fmt.Errorf("product %s is not owned by %s: %w", id, resolved.Owner.ID, models.ErrForbidden)
	}
	if product.Status == models.StatusInactive {
		return nil
	}

	product.Status = models.StatusInactive
	if err := s.productRepo.Update(product); err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	s.publishEvent(rabbitmq.EventListingDeactivated, product)
	return nil
}

// ListBySeller returns a seller's active listings, newest first. The
// identity-subject form fails with models.ErrNotFound when no profile is
// bound to it; an internal id with zero listings yields an empty slice.
func (s *ProductService) ListBySeller(ref OwnerRef) ([]ProductView, error) {
	sellerID := ref.ID
	if ref.IdentityUID != "" {
		owner, err := s.users.GetByIdentityUID(ref.IdentityUID)
		if err != nil {
			return nil, err
		}
		sellerID = owner.ID
	}

	products, err := s.productRepo.GetBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return s.expandSellers(products), nil
}

// expandSellers attaches {id, name} seller summaries, reading each distinct
// profile once. Profiles that cannot be loaded leave the summary empty
// rather than failing the whole query.
func (s *ProductService) expandSellers(products []models.Product) []ProductView {
	sellers := make(map[string]SellerSummary)
	views := make([]ProductView, len(products))
	for i, p := range products {
		summary, ok := sellers[p.SellerID]
		if !ok {
			if seller, err := s.users.GetByID(p.SellerID); err == nil {
				summary = SellerSummary{ID: seller.ID, Name: seller.Name}
			} else {
				log.Printf("Seller %s of product %s could not be loaded: %v", p.SellerID, p.ID, err)
			}
			sellers[p.SellerID] = summary
		}
		views[i] = ProductView{Product: p, Seller: summary}
	}
	return views
}

func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.mqClient == nil {
		return
	}
	payload := map[string]interface{}{
		"productId": product.ID,
		"sellerId":  product.SellerID,
		"status":    product.Status,
	}
	if err := s.mqClient.PublishListingEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", event, product.ID, err)
	}
}
