package handlers

import (
	"log"
	"strings"

	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProductHandler handles HTTP requests for catalog listings.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Mutations
// run behind the identity middleware; reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	// Registered before "/:id" so "user" is not read as a product id.
	productRoutes.Get("/user/:ref", h.HandleListBySeller)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", authRequired, h.HandleCreateProduct)
	productRoutes.Put("/:id", authRequired, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", authRequired, h.HandleDeactivateProduct)
}

// locationPayload is the request form of a listing location.
type locationPayload struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address" validate:"required"`
}

// createProductRequest carries a new listing. Price and quantity are pointers
// so that a valid zero price is distinguishable from an absent one.
type createProductRequest struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=1000"`
	Price       *float64        `json:"price" validate:"required,gte=0"`
	Category    string          `json:"category" validate:"required"`
	Location    locationPayload `json:"location"`
	Images      []string        `json:"images" validate:"required,min=1,dive,required"`
	Quantity    *int            `json:"quantity" validate:"omitnil,min=1"`
}

func (r *createProductRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Location.Address = strings.TrimSpace(r.Location.Address)
}

// HandleCreateProduct creates a new listing owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	req.trim()

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationFields(err),
		})
	}

	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Location: models.Location{
			Type:        "Point",
			Coordinates: req.Location.Coordinates,
			Address:     req.Location.Address,
		},
		Images:   req.Images,
		Quantity: 1,
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}

	view, err := h.service.CreateProduct(identity, product)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": view,
	})
}

// listProductsQuery carries the catalog search filters.
type listProductsQuery struct {
	Page     int      `query:"page" validate:"omitempty,min=1"`
	Limit    int      `query:"limit" validate:"omitempty,min=1,max=50"`
	Category string   `query:"category"`
	MinPrice *float64 `query:"minPrice" validate:"omitnil,gte=0"`
	MaxPrice *float64 `query:"maxPrice" validate:"omitnil,gte=0"`
	Sort     string   `query:"sort" validate:"omitempty,oneof=price_asc price_desc date_asc date_desc"`
	Lat      *float64 `query:"lat"`
	Lng      *float64 `query:"lng"`
	Distance int      `query:"distance" validate:"omitempty,min=1"`
}

// HandleListProducts searches active listings with filtering, sorting,
// pagination and optional proximity search.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	var query listProductsQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationFields(err),
		})
	}
	if err := h.validate.Struct(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationFields(err),
		})
	}

	filter := repositories.ProductFilter{
		Category:   strings.TrimSpace(query.Category),
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Lat:        query.Lat,
		Lng:        query.Lng,
		DistanceKm: query.Distance,
		Sort:       query.Sort,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Sort == "" {
		filter.Sort = repositories.SortDateDesc
	}
	if filter.DistanceKm == 0 {
		filter.DistanceKm = 10 // km
	}

	products, pagination, err := h.service.ListProducts(filter)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"products":   products,
		"pagination": pagination,
	})
}

// HandleGetProduct returns a single listing by id, regardless of status.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	view, err := h.service.GetProduct(c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"product": view,
	})
}

// updateProductRequest carries a partial listing update. Nil fields are left
// untouched; a supplied "seller" field is deliberately not mapped, so it can
// never reassign a listing.
type updateProductRequest struct {
	Title       *string          `json:"title" validate:"omitnil,required,max=100"`
	Description *string          `json:"description" validate:"omitnil,required,max=1000"`
	Price       *float64         `json:"price" validate:"omitnil,gte=0"`
	Category    *string          `json:"category" validate:"omitnil,required"`
	Location    *locationPayload `json:"location"`
	Images      []string         `json:"images" validate:"omitnil,min=1,dive,required"`
	Quantity    *int             `json:"quantity" validate:"omitnil,min=1"`
	Status      *string          `json:"status" validate:"omitnil,oneof=active sold inactive"`
}

func (r *updateProductRequest) trim() {
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
	}
	if r.Category != nil {
		*r.Category = strings.TrimSpace(*r.Category)
	}
	if r.Location != nil {
		r.Location.Address = strings.TrimSpace(r.Location.Address)
	}
}

// HandleUpdateProduct applies a partial update to a listing the caller owns.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req updateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	req.trim()

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationFields(err),
		})
	}

	update := services.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Images:      req.Images,
		Quantity:    req.Quantity,
	}
	if req.Location != nil {
		update.Location = &models.Location{
			Type:        "Point",
			Coordinates: req.Location.Coordinates,
			Address:     req.Location.Address,
		}
	}
	if req.Status != nil {
		status := models.ProductStatus(*req.Status)
		update.Status = &status
	}

	view, err := h.service.UpdateProduct(identity, c.Params("id"), update)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": view,
	})
}

// HandleDeactivateProduct soft-deletes a listing the caller owns.
func (h *ProductHandler) HandleDeactivateProduct(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	if err := h.service.DeactivateProduct(identity, c.Params("id")); err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// HandleListBySeller returns a seller's active listings. The path segment may
// be an internal owner id or an external identity subject; a syntactic check
// decides which form it is, never a database round trip.
func (h *ProductHandler) HandleListBySeller(c *fiber.Ctx) error {
	refParam := c.Params("ref")

	var ref services.OwnerRef
	if _, err := uuid.Parse(refParam); err == nil {
		ref.ID = refParam
	} else {
		ref.IdentityUID = refParam
	}

	products, err := h.service.ListBySeller(ref)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"products": products,
	})
}
