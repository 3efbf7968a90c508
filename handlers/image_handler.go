package handlers

import (
	"errors"

	"github.com/dm-gthb/listly/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ImageHandler serves listing images from the object store.
type ImageHandler struct {
	Store storage.ObjectStore
}

func NewImageHandler(store storage.ObjectStore) *ImageHandler {
	return &ImageHandler{Store: store}
}

// GetImage - GET /api/images/:key
// Keys are immutable once written, so responses carry a long-lived cache
// directive.
func (h *ImageHandler) GetImage(c *fiber.Ctx) error {
	data, contentType, err := h.Store.Get(c.Params("key"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Image not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read image"})
	}

	c.Set("Content-Type", contentType)
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	c.Set("Content-Disposition", `inline; filename="image"`)
	return c.Send(data)
}
