package handlers

import (
	"strings"

	"github.com/dm-gthb/listly/models"
	"github.com/dm-gthb/listly/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

// RegisterRequest defines the payload for registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the payload for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	var errs []models.ErrorDetail
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		errs = append(errs, models.ErrorDetail{Field: "name", Message: "required"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		errs = append(errs, models.ErrorDetail{Field: "email", Message: "must be a valid email"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, models.ErrorDetail{Field: "password", Message: "must be at least 6 characters"})
	}
	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{Errors: errs})
	}

	// Hash password
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not hash password"})
	}

	user := models.User{
		Email: req.Email,
		Name:  req.Name,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Password{UserID: user.ID, Hash: hash}).Error; err != nil {
			return err
		}
		var role models.Role
		if err := tx.Where("name = ?", "user").First(&role).Error; err == nil {
			return tx.Model(&user).Association("Roles").Append(&role)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User already exists"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully", "id": user.ID})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	var credential models.Password
	if err := h.DB.Where("user_id = ?", user.ID).First(&credential).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	// Verify password
	if !utils.CheckPasswordHash(req.Password, credential.Hash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	t, err := utils.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not login"})
	}

	c.Cookie(utils.SessionCookie(t))

	return c.JSON(fiber.Map{
		"token": t,
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(utils.TokenCookieName)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
