package handlers

import (
	"log"
	"strings"

	"lapak/internal/middleware"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for owner profiles. Credential checking
// itself happens upstream in the identity middleware; these routes only bind
// verified identities to marketplace profiles.
type AuthHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", authRequired, h.HandleRegister)
	authRoutes.Get("/profile", authRequired, h.HandleProfile)
}

// RegisterRequest represents the request body for profile registration.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// HandleRegister binds the verified identity to a full profile.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationFields(err),
		})
	}

	user, created, err := h.userService.Register(identity, req.Name, req.Phone)
	if err != nil {
		return renderError(c, err)
	}

	if !created {
		return c.JSON(fiber.Map{
			"message": "User already registered",
			"user":    user,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleProfile returns the caller's profile, creating a minimal one when the
// identity has none yet.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	resolved, err := h.userService.ResolveOwner(identity)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(resolved.Owner)
}
