package handlers

import (
	"errors"
	"fmt"
	"log"

	"lapak/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationFields flattens validator violations into the per-field error map
// every handler reports, so all violations reach the caller at once.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		for _, e := range violations {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	} else {
		fields["request"] = err.Error()
	}
	return fields
}

// renderError maps the shared error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is treated as a dependency failure: logged with
// context and collapsed to a generic 500 so store details never leak.
func renderError(c *fiber.Ctx, err error) error {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
		})
	case errors.Is(err, models.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You are not authorized to modify this resource",
		})
	case errors.Is(err, models.ErrPayloadTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, models.ErrTooManyFiles):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		log.Printf("Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
