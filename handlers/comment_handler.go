package handlers

import (
	"strconv"
	"strings"

	"github.com/dm-gthb/listly/models"
	"github.com/dm-gthb/listly/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CommentHandler struct {
	DB *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{DB: db}
}

// CreateCommentRequest
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// GetComments - GET /api/listings/:id/comments
func (h *CommentHandler) GetComments(c *fiber.Ctx) error {
	listingID, err := strconv.Atoi(c.Params("id"))
	if err != nil || listingID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	var listing models.Listing
	if err := h.DB.First(&listing, listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	var comments []models.Comment
	err = h.DB.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, name, avatar_url")
	}).Where("listing_id = ?", listingID).Order("created_at desc").Find(&comments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch comments"})
	}

	return c.JSON(fiber.Map{"data": comments})
}

// CreateComment - POST /api/listings/:id/comments
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	listingID, err := strconv.Atoi(c.Params("id"))
	if err != nil || listingID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	userID := utils.CurrentUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{
			Errors: []models.ErrorDetail{{Field: "text", Message: "required"}},
		})
	}

	var listing models.Listing
	if err := h.DB.First(&listing, listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	comment := models.Comment{
		Text:      req.Text,
		UserID:    userID,
		ListingID: uint(listingID),
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create comment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Comment created", "data": comment})
}
