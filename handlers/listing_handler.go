package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/dm-gthb/listly/internal/authz"
	"github.com/dm-gthb/listly/internal/catalog"
	"github.com/dm-gthb/listly/internal/storage"
	"github.com/dm-gthb/listly/models"
	"github.com/dm-gthb/listly/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ListingHandler struct {
	DB    *gorm.DB
	Store storage.ObjectStore
}

func NewListingHandler(db *gorm.DB, store storage.ObjectStore) *ListingHandler {
	return &ListingHandler{DB: db, Store: store}
}

// ListByCategory - GET /api/categories/:id/listings
// Query params: page, condition (all|new|used), sortBy (createdAt|price),
// and attr_<id> filters for the category's attributes.
func (h *ListingHandler) ListByCategory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category id"})
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}

	attrs, err := catalog.ResolveCategoryAttributes(h.DB, category.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch attributes"})
	}

	var listings []models.Listing
	err = h.DB.
		Joins("JOIN listing_categories ON listing_categories.listing_id = listings.id").
		Where("listing_categories.category_id = ?", category.ID).
		Preload("Attributes").
		Find(&listings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch listings"})
	}

	// Attribute filters: only non-empty values constrain the result. Values
	// outside a select attribute's allowed set act as literal filters and
	// simply match nothing.
	filters := make(map[uint]string)
	for _, ca := range attrs {
		if v := c.Query(catalog.FieldKey(ca.AttributeID)); v != "" {
			filters[ca.AttributeID] = v
		}
	}

	filtered := catalog.FilterByCondition(listings, c.Query("condition", catalog.ConditionAll))
	filtered = catalog.FilterByAttributes(filtered, filters)
	catalog.SortListings(filtered, c.Query("sortBy", catalog.SortByCreatedAt))

	count := len(filtered)
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	return c.JSON(fiber.Map{
		"category_name": category.Name,
		"count":         count,
		"attributes":    attrs,
		"data":          catalog.Paginate(filtered, page),
		"meta":          models.NewPaginationMeta(page, catalog.PageSize, int64(count)),
	})
}

// GetLatest - GET /api/listings/latest
func (h *ListingHandler) GetLatest(c *fiber.Ctx) error {
	var listings []models.Listing
	err := h.DB.Preload("Categories.Category").
		Order("created_at desc").
		Limit(catalog.PageSize).
		Find(&listings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch listings"})
	}
	return c.JSON(fiber.Map{"data": listings})
}

// Search - GET /api/listings/search?q=
func (h *ListingHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter 'q' is required"})
	}

	var listings []models.Listing
	err := h.DB.Where("title LIKE ?", "%"+q+"%").Order("created_at desc").Find(&listings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not search listings"})
	}
	return c.JSON(fiber.Map{"data": listings})
}

// GetListing - GET /api/listings/:id
func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	var listing models.Listing
	err = h.DB.
		Preload("Categories.Category").
		Preload("Attributes.Attribute").
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, avatar_url")
		}).
		First(&listing, id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	return c.JSON(fiber.Map{"data": listing})
}

// GetMyListings - GET /api/my/listings
func (h *ListingHandler) GetMyListings(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var listings []models.Listing
	err := h.DB.
		Preload("Categories.Category").
		Preload("Attributes.Attribute").
		Where("owner_id = ?", userID).
		Order("created_at desc").
		Find(&listings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch listings"})
	}
	return c.JSON(fiber.Map{"data": listings})
}

// CreateListing - POST /api/listings (multipart/form-data)
func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c)
	if err := authz.Check(h.DB, userID, "create:listing:own"); err != nil {
		return authzError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	parsed, errs := h.validateSubmission(form)
	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{Errors: errs})
	}

	files := form.File["images"]
	if errs := validateImageFiles(files, 0); len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{Errors: errs})
	}

	// Upload before any row is written; a put failure aborts the operation.
	keys, err := h.uploadImages(files)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not store images"})
	}

	listing := models.Listing{
		Title:       parsed.Title,
		Description: parsed.Description,
		Sum:         parsed.Sum,
		Condition:   parsed.Condition,
		Images:      keys,
		OwnerID:     userID,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ListingCategory{ListingID: listing.ID, CategoryID: parsed.CategoryID}).Error; err != nil {
			return err
		}
		for attributeID, value := range parsed.Attributes {
			row := models.ListingAttribute{ListingID: listing.ID, AttributeID: attributeID, Value: value}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Listing created", "id": listing.ID})
}

// UpdateListing - PUT /api/listings/:id (multipart/form-data)
// Existing image keys submitted under "images" values are kept; stored keys
// absent from the submission are deleted from storage after the update.
func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	var listing models.Listing
	if err := h.DB.First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	userID := utils.CurrentUserID(c)
	required := "update:listing:any"
	if listing.OwnerID == userID {
		required = "update:listing:own,any"
	}
	if err := authz.Check(h.DB, userID, required); err != nil {
		return authzError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	parsed, errs := h.validateSubmission(form)
	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{Errors: errs})
	}

	// Keys the submission keeps, restricted to keys the listing owns.
	current := make(map[string]bool, len(listing.Images))
	for _, key := range listing.Images {
		current[key] = true
	}
	kept := make(models.ImageList, 0, len(listing.Images))
	for _, key := range form.Value["images"] {
		if current[key] {
			kept = append(kept, key)
		}
	}

	files := form.File["images"]
	if errs := validateImageFiles(files, len(kept)); len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrors{Errors: errs})
	}

	newKeys, err := h.uploadImages(files)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not store images"})
	}
	images := append(kept, newKeys...)

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		listing.Title = parsed.Title
		listing.Description = parsed.Description
		listing.Sum = parsed.Sum
		listing.Condition = parsed.Condition
		listing.Images = images
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}
		if err := applyCategory(tx, listing.ID, parsed.CategoryID); err != nil {
			return err
		}
		return applyAttributes(tx, listing.ID, parsed.Attributes)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update listing"})
	}

	// Cleanup of dropped images is best-effort; failures are logged only.
	keptSet := make(map[string]bool, len(images))
	for _, key := range images {
		keptSet[key] = true
	}
	for key := range current {
		if !keptSet[key] {
			if err := h.Store.Delete(key); err != nil {
				log.Printf("Failed to delete image %s: %v", key, err)
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Listing updated", "id": listing.ID})
}

// DeleteListing - DELETE /api/listings/:id
func (h *ListingHandler) DeleteListing(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing id"})
	}

	var listing models.Listing
	if err := h.DB.First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
	}

	userID := utils.CurrentUserID(c)
	required := "delete:listing:any"
	if listing.OwnerID == userID {
		required = "delete:listing:own,any"
	}
	if err := authz.Check(h.DB, userID, required); err != nil {
		return authzError(c, err)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.ListingCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.ListingAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&listing).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete listing"})
	}

	for _, key := range listing.Images {
		if err := h.Store.Delete(key); err != nil {
			log.Printf("Failed to delete image %s: %v", key, err)
		}
	}

	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

// validateSubmission validates core fields and the dynamic attribute fields
// against the submitted category's derived rules.
func (h *ListingHandler) validateSubmission(form *multipart.Form) (catalog.ParsedListing, []models.ErrorDetail) {
	input := catalog.ListingInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Sum:         formValue(form, "sum"),
		CategoryID:  formValue(form, "categoryId"),
		Condition:   formValue(form, "condition"),
		Attributes:  make(map[string]string),
	}
	for key, values := range form.Value {
		if strings.HasPrefix(key, catalog.FieldKeyPrefix) && len(values) > 0 {
			input.Attributes[key] = values[0]
		}
	}

	var rules map[string]catalog.FieldRule
	categoryID, err := strconv.ParseUint(strings.TrimSpace(input.CategoryID), 10, 32)
	if err == nil && categoryID >= 1 {
		var category models.Category
		if err := h.DB.First(&category, categoryID).Error; err != nil || category.ParentID == nil {
			return catalog.ParsedListing{}, []models.ErrorDetail{
				{Field: "categoryId", Message: "must be an existing child category"},
			}
		}
		attrs, err := catalog.ResolveCategoryAttributes(h.DB, uint(categoryID))
		if err != nil {
			return catalog.ParsedListing{}, []models.ErrorDetail{
				{Field: "categoryId", Message: "could not resolve category attributes"},
			}
		}
		rules = catalog.BuildFieldRules(attrs)
	}

	return catalog.ValidateListing(input, rules)
}

func (h *ListingHandler) uploadImages(files []*multipart.FileHeader) (models.ImageList, error) {
	keys := make(models.ImageList, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		key := storage.NewKey(fh.Filename)
		if err := h.Store.Put(key, data); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// applyCategory reconciles the listing's single category association inside
// the caller's transaction.
func applyCategory(tx *gorm.DB, listingID, categoryID uint) error {
	if err := tx.
		Where("listing_id = ? AND category_id <> ?", listingID, categoryID).
		Delete(&models.ListingCategory{}).Error; err != nil {
		return err
	}
	var existing models.ListingCategory
	err := tx.Where("listing_id = ? AND category_id = ?", listingID, categoryID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.ListingCategory{ListingID: listingID, CategoryID: categoryID}).Error
	}
	return err
}

// applyAttributes diffs the desired attribute set against the stored one and
// issues only the necessary inserts, updates and deletes.
func applyAttributes(tx *gorm.DB, listingID uint, desired map[uint]string) error {
	var current []models.ListingAttribute
	if err := tx.Where("listing_id = ?", listingID).Find(&current).Error; err != nil {
		return err
	}

	stored := make(map[uint]string, len(current))
	for _, row := range current {
		stored[row.AttributeID] = row.Value
	}

	for attributeID := range stored {
		if _, keep := desired[attributeID]; !keep {
			err := tx.Where("listing_id = ? AND attribute_id = ?", listingID, attributeID).
				Delete(&models.ListingAttribute{}).Error
			if err != nil {
				return err
			}
		}
	}

	for attributeID, value := range desired {
		storedValue, exists := stored[attributeID]
		switch {
		case !exists:
			row := models.ListingAttribute{ListingID: listingID, AttributeID: attributeID, Value: value}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case storedValue != value:
			err := tx.Model(&models.ListingAttribute{}).
				Where("listing_id = ? AND attribute_id = ?", listingID, attributeID).
				Update("value", value).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func validateImageFiles(files []*multipart.FileHeader, keptCount int) []models.ErrorDetail {
	var errs []models.ErrorDetail
	if keptCount+len(files) > catalog.MaxImages {
		errs = append(errs, models.ErrorDetail{Field: "images", Message: "at most 5 images allowed"})
	}
	for _, fh := range files {
		if !storage.AllowedImageExt(fh.Filename) {
			errs = append(errs, models.ErrorDetail{Field: "images", Message: "only .jpg, .jpeg, and .png files are allowed"})
		}
		if fh.Size > catalog.MaxImageBytes {
			errs = append(errs, models.ErrorDetail{Field: "images", Message: "image size must be less than 700KB"})
		}
	}
	return errs
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func authzError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	case errors.Is(err, authz.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not check permissions"})
	}
}
