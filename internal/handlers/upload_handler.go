package handlers

import (
	"log"

	"lapak/internal/middleware"
	"lapak/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles media ingestion and public retrieval. Write access
// requires an authenticated owner; reads are intentionally open because the
// assets are public marketplace photos consumed from another origin.
type UploadHandler struct {
	store *storage.DiskStore
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store *storage.DiskStore) *UploadHandler {
	return &UploadHandler{
		store: store,
	}
}

// RegisterRoutes registers the upload routes with the Fiber app.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	uploadRoutes := router.Group("/uploads")
	uploadRoutes.Post("/", authRequired, h.HandleUpload)
	uploadRoutes.Get("/:scope/:name", h.HandleServeAsset)
}

// HandleUpload stores a batch of files under the caller's scope and returns
// one public URL per file.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("Error reading multipart form: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}

	headers := form.File["images"]
	uploads := make([]storage.Upload, 0, len(headers))
	for _, header := range headers {
		content, err := header.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not read uploaded file",
			})
		}
		defer content.Close()
		uploads = append(uploads, storage.Upload{
			Name:    header.Filename,
			Size:    header.Size,
			Content: content,
		})
	}

	urls, err := h.store.Store(identity.UID, uploads)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Files uploaded successfully",
		"urls":    urls,
	})
}

// HandleServeAsset streams a stored asset. The headers permit embedding from
// any origin: media is consumed by a separate front-end origin.
func (h *UploadHandler) HandleServeAsset(c *fiber.Ctx) error {
	path, err := h.store.Resolve(c.Params("scope"), c.Params("name"))
	if err != nil {
		return renderError(c, err)
	}

	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "GET")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
	c.Set("Cross-Origin-Resource-Policy", "cross-origin")
	c.Set("Cross-Origin-Embedder-Policy", "credentialless")

	return c.SendFile(path)
}
