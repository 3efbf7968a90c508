package config

import (
	"log"

	"github.com/dm-gthb/listly/models"
	"github.com/dm-gthb/listly/utils"

	"gorm.io/gorm"
)

// SeedPermissions creates the full permission grid and the baseline roles.
// Safe to call on every startup: existing rows are left untouched.
func SeedPermissions(db *gorm.DB) {
	log.Println("🌱 Seeding roles and permissions...")

	actions := []string{models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete}
	entities := []string{models.EntityUser, models.EntityListing}
	accesses := []string{models.AccessOwn, models.AccessAny}

	for _, action := range actions {
		for _, entity := range entities {
			for _, access := range accesses {
				p := models.Permission{Action: action, Entity: entity, Access: access}
				var existing models.Permission
				err := db.Where("action = ? AND entity = ? AND access = ?", action, entity, access).
					First(&existing).Error
				if err == gorm.ErrRecordNotFound {
					if err := db.Create(&p).Error; err != nil {
						log.Printf("Failed to seed permission %s:%s:%s: %v", action, entity, access, err)
					}
				}
			}
		}
	}

	roles := []struct {
		Role models.Role
		// nil access list means every access for the action/entity pair
		Grants func(p models.Permission) bool
	}{
		{
			Role: models.Role{Name: "admin", Description: "Full access to any resource"},
			Grants: func(p models.Permission) bool {
				return true
			},
		},
		{
			Role: models.Role{Name: "user", Description: "Standard user: manage own listings, read anything"},
			Grants: func(p models.Permission) bool {
				if p.Action == models.ActionRead {
					return true
				}
				return p.Access == models.AccessOwn
			},
		},
		{
			Role: models.Role{Name: "demo", Description: "Read-only demo account"},
			Grants: func(p models.Permission) bool {
				return p.Action == models.ActionRead
			},
		},
	}

	var allPermissions []models.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		log.Printf("Failed to load permissions for role seeding: %v", err)
		return
	}

	for _, rData := range roles {
		var role models.Role
		err := db.Where("name = ?", rData.Role.Name).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			role = rData.Role
			if err := db.Create(&role).Error; err != nil {
				log.Printf("Failed to seed role %s: %v", role.Name, err)
				continue
			}
			log.Printf("Seeded role: %s", role.Name)
		} else if err != nil {
			log.Printf("Error checking for role %s: %v", rData.Role.Name, err)
			continue
		}

		var granted []models.Permission
		for _, p := range allPermissions {
			if rData.Grants(p) {
				granted = append(granted, p)
			}
		}
		if err := db.Model(&role).Association("Permissions").Replace(granted); err != nil {
			log.Printf("Failed to associate permissions with role %s: %v", role.Name, err)
		}
	}

	log.Println("✅ Roles and permissions seeded.")
}

// SeedCategories creates the two-level category tree plus the attributes
// relevant to each child category.
func SeedCategories(db *gorm.DB) {
	log.Println("🌱 Seeding categories and attributes...")

	tree := map[string][]string{
		"electronics": {"laptops", "phones"},
		"vehicles":    {"cars", "motorcycles"},
		"home":        {"furniture"},
	}

	categoryIDs := map[string]uint{}
	for parentName, children := range tree {
		parent := ensureCategory(db, parentName, nil)
		if parent == nil {
			continue
		}
		categoryIDs[parentName] = parent.ID
		for _, childName := range children {
			child := ensureCategory(db, childName, &parent.ID)
			if child != nil {
				categoryIDs[childName] = child.ID
			}
		}
	}

	attrs := []struct {
		Attribute  models.Attribute
		Values     []string
		Categories []string
	}{
		{
			Attribute:  models.Attribute{Name: "RAM", Slug: "ram", InputType: models.InputTypeNumber, Unit: "GB"},
			Categories: []string{"laptops", "phones"},
		},
		{
			Attribute:  models.Attribute{Name: "Storage", Slug: "storage", InputType: models.InputTypeSelect},
			Values:     []string{"128GB", "256GB", "512GB", "1TB"},
			Categories: []string{"laptops", "phones"},
		},
		{
			Attribute:  models.Attribute{Name: "Color", Slug: "color", InputType: models.InputTypeSelect},
			Values:     []string{"black", "white", "silver", "blue"},
			Categories: []string{"laptops", "phones", "cars", "motorcycles"},
		},
		{
			Attribute:  models.Attribute{Name: "Mileage", Slug: "mileage", InputType: models.InputTypeNumber, Unit: "km"},
			Categories: []string{"cars", "motorcycles"},
		},
		{
			Attribute:  models.Attribute{Name: "Material", Slug: "material", InputType: models.InputTypeText},
			Categories: []string{"furniture"},
		},
	}

	for _, a := range attrs {
		var attr models.Attribute
		err := db.Where("slug = ?", a.Attribute.Slug).First(&attr).Error
		if err == gorm.ErrRecordNotFound {
			attr = a.Attribute
			if err := db.Create(&attr).Error; err != nil {
				log.Printf("Failed to seed attribute %s: %v", attr.Slug, err)
				continue
			}
			for _, v := range a.Values {
				if err := db.Create(&models.AttributeValue{AttributeID: attr.ID, Value: v}).Error; err != nil {
					log.Printf("Failed to seed value %s for %s: %v", v, attr.Slug, err)
				}
			}
		} else if err != nil {
			log.Printf("Error checking for attribute %s: %v", a.Attribute.Slug, err)
			continue
		}

		for _, categoryName := range a.Categories {
			categoryID, ok := categoryIDs[categoryName]
			if !ok {
				continue
			}
			join := models.CategoryAttribute{CategoryID: categoryID, AttributeID: attr.ID}
			var existing models.CategoryAttribute
			err := db.Where("category_id = ? AND attribute_id = ?", categoryID, attr.ID).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&join).Error; err != nil {
					log.Printf("Failed to link attribute %s to %s: %v", attr.Slug, categoryName, err)
				}
			}
		}
	}

	log.Println("✅ Categories and attributes seeded.")
}

func ensureCategory(db *gorm.DB, name string, parentID *uint) *models.Category {
	var category models.Category
	err := db.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Error checking for category %s: %v", name, err)
		return nil
	}
	category = models.Category{Name: name, ParentID: parentID}
	if err := db.Create(&category).Error; err != nil {
		log.Printf("Failed to seed category %s: %v", name, err)
		return nil
	}
	return &category
}

func SeedUsers(db *gorm.DB) {
	log.Println("🌱 Seeding users...")

	hash, _ := utils.HashPassword("password123")

	users := []struct {
		User models.User
		Role string
	}{
		{User: models.User{Email: "admin@example.com", Name: "admin"}, Role: "admin"},
		{User: models.User{Email: "user1@example.com", Name: "user one"}, Role: "user"},
		{User: models.User{Email: "user2@example.com", Name: "user two"}, Role: "user"},
		{User: models.User{Email: "demo@example.com", Name: "demo"}, Role: "demo"},
	}

	for _, u := range users {
		var existingUser models.User
		err := db.Where("email = ?", u.User.Email).First(&existingUser).Error
		if err != gorm.ErrRecordNotFound {
			if err == nil {
				log.Printf("User already exists: %s", u.User.Email)
			}
			continue
		}

		user := u.User
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", user.Email, err)
			continue
		}
		if err := db.Create(&models.Password{UserID: user.ID, Hash: hash}).Error; err != nil {
			log.Printf("Failed to seed password for %s: %v", user.Email, err)
		}

		var role models.Role
		if err := db.Where("name = ?", u.Role).First(&role).Error; err == nil {
			if err := db.Model(&user).Association("Roles").Append(&role); err != nil {
				log.Printf("Failed to assign role %s to %s: %v", u.Role, user.Email, err)
			}
		}
		log.Printf("User seeded: %s (ID: %d)", user.Email, user.ID)
	}

	log.Println("✅ Seeding complete.")
}

// SeedListings creates a few demo listings in the laptops category.
func SeedListings(db *gorm.DB) {
	log.Println("🌱 Seeding listings...")

	var owner models.User
	if err := db.Where("email = ?", "user1@example.com").First(&owner).Error; err != nil {
		log.Printf("Cannot seed listings, demo owner missing: %v", err)
		return
	}
	var laptops models.Category
	if err := db.Where("name = ?", "laptops").First(&laptops).Error; err != nil {
		log.Printf("Cannot seed listings, laptops category missing: %v", err)
		return
	}

	var count int64
	db.Model(&models.Listing{}).Count(&count)
	if count > 0 {
		log.Println("Listings already present, skipping.")
		return
	}

	var ram, color models.Attribute
	db.Where("slug = ?", "ram").First(&ram)
	db.Where("slug = ?", "color").First(&color)

	demos := []struct {
		Listing models.Listing
		Attrs   map[uint]string
	}{
		{
			Listing: models.Listing{
				Title:       "ThinkPad X1 Carbon",
				Description: "Gen 9, lightly used, great battery.",
				Sum:         850,
				Condition:   models.ConditionUsed,
				Images:      models.ImageList{},
				OwnerID:     owner.ID,
			},
			Attrs: map[uint]string{ram.ID: "16", color.ID: "black"},
		},
		{
			Listing: models.Listing{
				Title:       "MacBook Air M2",
				Description: "Sealed box, warranty until next year.",
				Sum:         1100,
				Condition:   models.ConditionNew,
				Images:      models.ImageList{},
				OwnerID:     owner.ID,
			},
			Attrs: map[uint]string{ram.ID: "8", color.ID: "silver"},
		},
	}

	for _, d := range demos {
		listing := d.Listing
		if err := db.Create(&listing).Error; err != nil {
			log.Printf("Failed to seed listing %s: %v", listing.Title, err)
			continue
		}
		if err := db.Create(&models.ListingCategory{ListingID: listing.ID, CategoryID: laptops.ID}).Error; err != nil {
			log.Printf("Failed to categorize listing %s: %v", listing.Title, err)
		}
		for attrID, value := range d.Attrs {
			if attrID == 0 {
				continue
			}
			row := models.ListingAttribute{ListingID: listing.ID, AttributeID: attrID, Value: value}
			if err := db.Create(&row).Error; err != nil {
				log.Printf("Failed to seed attribute for %s: %v", listing.Title, err)
			}
		}
	}

	log.Println("✅ Listings seeded.")
}
