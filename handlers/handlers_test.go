package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dm-gthb/listly/config"
	"github.com/dm-gthb/listly/internal/storage"
	"github.com/dm-gthb/listly/models"
	"github.com/dm-gthb/listly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	App   *fiber.App
	DB    *gorm.DB
	Store storage.ObjectStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Password{},
		&models.Role{},
		&models.Permission{},
		&models.Category{},
		&models.Attribute{},
		&models.AttributeValue{},
		&models.CategoryAttribute{},
		&models.Listing{},
		&models.ListingCategory{},
		&models.ListingAttribute{},
		&models.Comment{},
	))
	config.SeedPermissions(db)

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	app := fiber.New()

	authHandler := NewAuthHandler(db)
	categoryHandler := NewCategoryHandler(db)
	listingHandler := NewListingHandler(db, store)
	commentHandler := NewCommentHandler(db)
	imageHandler := NewImageHandler(store)

	api := app.Group("/api")
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)
	api.Get("/categories", categoryHandler.GetCategories)
	api.Get("/categories/:id/attributes", categoryHandler.GetCategoryAttributes)
	api.Get("/categories/:id/listings", listingHandler.ListByCategory)
	api.Get("/listings/latest", listingHandler.GetLatest)
	api.Get("/listings/search", listingHandler.Search)
	api.Get("/listings/:id", listingHandler.GetListing)
	api.Get("/listings/:id/comments", commentHandler.GetComments)
	api.Get("/images/:key", imageHandler.GetImage)
	api.Get("/my/listings", utils.AuthMiddleware, listingHandler.GetMyListings)
	api.Post("/listings", utils.AuthMiddleware, listingHandler.CreateListing)
	api.Put("/listings/:id", utils.AuthMiddleware, listingHandler.UpdateListing)
	api.Delete("/listings/:id", utils.AuthMiddleware, listingHandler.DeleteListing)
	api.Post("/listings/:id/comments", utils.AuthMiddleware, commentHandler.CreateComment)

	return &testEnv{App: app, DB: db, Store: store}
}

func (e *testEnv) createUser(t *testing.T, email, roleName string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: email}
	require.NoError(t, e.DB.Create(&user).Error)

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, e.DB.Create(&models.Password{UserID: user.ID, Hash: hash}).Error)

	var role models.Role
	require.NoError(t, e.DB.Where("name = ?", roleName).First(&role).Error)
	require.NoError(t, e.DB.Model(&user).Association("Roles").Append(&role))
	return user
}

// createLaptopsCategory creates an electronics > laptops pair with a numeric
// RAM attribute and a select Color attribute, returning the child category.
func (e *testEnv) createLaptopsCategory(t *testing.T) (models.Category, models.Attribute, models.Attribute) {
	t.Helper()
	parent := models.Category{Name: "electronics"}
	require.NoError(t, e.DB.Create(&parent).Error)
	child := models.Category{Name: "laptops", ParentID: &parent.ID}
	require.NoError(t, e.DB.Create(&child).Error)

	ram := models.Attribute{Name: "RAM", Slug: "ram", InputType: models.InputTypeNumber, Unit: "GB"}
	require.NoError(t, e.DB.Create(&ram).Error)
	color := models.Attribute{Name: "Color", Slug: "color", InputType: models.InputTypeSelect}
	require.NoError(t, e.DB.Create(&color).Error)
	for _, v := range []string{"black", "silver"} {
		require.NoError(t, e.DB.Create(&models.AttributeValue{AttributeID: color.ID, Value: v}).Error)
	}

	require.NoError(t, e.DB.Create(&models.CategoryAttribute{CategoryID: child.ID, AttributeID: ram.ID}).Error)
	require.NoError(t, e.DB.Create(&models.CategoryAttribute{CategoryID: child.ID, AttributeID: color.ID}).Error)
	return child, ram, color
}

// createFurnitureCategory creates a home > furniture pair with no declared
// attributes, for tests that do not exercise dynamic fields.
func (e *testEnv) createFurnitureCategory(t *testing.T) models.Category {
	t.Helper()
	parent := models.Category{Name: "home"}
	require.NoError(t, e.DB.Create(&parent).Error)
	child := models.Category{Name: "furniture", ParentID: &parent.ID}
	require.NoError(t, e.DB.Create(&child).Error)
	return child
}

func (e *testEnv) createListing(t *testing.T, ownerID, categoryID uint, title string, sum int, condition string, attrs map[uint]string) models.Listing {
	t.Helper()
	listing := models.Listing{
		Title:       title,
		Description: "desc",
		Sum:         sum,
		Condition:   condition,
		Images:      models.ImageList{},
		OwnerID:     ownerID,
	}
	require.NoError(t, e.DB.Create(&listing).Error)
	require.NoError(t, e.DB.Create(&models.ListingCategory{ListingID: listing.ID, CategoryID: categoryID}).Error)
	for attributeID, value := range attrs {
		row := models.ListingAttribute{ListingID: listing.ID, AttributeID: attributeID, Value: value}
		require.NoError(t, e.DB.Create(&row).Error)
	}
	return listing
}

func authCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateToken(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: utils.TokenCookieName, Value: token}
}

type testFile struct {
	Field    string
	Filename string
	Data     []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...testFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, res *http.Response, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
}
