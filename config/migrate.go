package config

import (
	"log"

	"github.com/dm-gthb/listly/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	err := db.AutoMigrate(
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
	)

	if err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return err
	}

	log.Println("Database Migrations completed succesfully...")

	// Roles/permissions and the category tree must exist even on normal startup
	SeedPermissions(db)
	SeedCategories(db)

	return err
}

func ResetAndMigrate(db *gorm.DB) error {
	// Drop all tables
	tables := []interface{}{
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
	}

	if err := db.Migrator().DropTable(tables...); err != nil {
		log.Printf("Failed to drop tables: %v", err)
		return err
	}

	log.Println("All tables dropped successfully.")

	if err := db.AutoMigrate(tables...); err != nil {
		log.Printf("Failed to auto migrate: %v", err)
		return err
	}

	SeedPermissions(db)
	SeedCategories(db)
	SeedUsers(db)
	SeedListings(db)

	log.Println("Database reset and migration completed successfully.")
	return nil
}
