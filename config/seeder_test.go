package config

import (
	"testing"

	"github.com/dm-gthb/listly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeederDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:seed_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
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
	return db
}

func TestSeedPermissionsGrid(t *testing.T) {
	db := setupSeederDB(t)
	SeedPermissions(db)

	// 4 actions x 2 entities x 2 accesses
	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&count).Error)
	assert.Equal(t, int64(16), count)

	var admin, user, demo models.Role
	require.NoError(t, db.Preload("Permissions").Where("name = ?", "admin").First(&admin).Error)
	require.NoError(t, db.Preload("Permissions").Where("name = ?", "user").First(&user).Error)
	require.NoError(t, db.Preload("Permissions").Where("name = ?", "demo").First(&demo).Error)

	assert.Len(t, admin.Permissions, 16)
	// read own/any for both entities plus own create/update/delete
	assert.Len(t, user.Permissions, 10)
	assert.Len(t, demo.Permissions, 4)
	for _, p := range demo.Permissions {
		assert.Equal(t, models.ActionRead, p.Action)
	}
}

func TestSeedPermissionsIdempotent(t *testing.T) {
	db := setupSeederDB(t)
	SeedPermissions(db)
	SeedPermissions(db)

	var permissions, roles int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permissions).Error)
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(16), permissions)
	assert.Equal(t, int64(3), roles)
}

func TestSeedCategoriesIdempotent(t *testing.T) {
	db := setupSeederDB(t)
	SeedCategories(db)

	var before int64
	require.NoError(t, db.Model(&models.Category{}).Count(&before).Error)
	require.NotZero(t, before)

	SeedCategories(db)

	var after int64
	require.NoError(t, db.Model(&models.Category{}).Count(&after).Error)
	assert.Equal(t, before, after)

	var joins int64
	require.NoError(t, db.Model(&models.CategoryAttribute{}).Count(&joins).Error)
	assert.NotZero(t, joins)
}

func TestSeedCategoriesTreeShape(t *testing.T) {
	db := setupSeederDB(t)
	SeedCategories(db)

	var laptops models.Category
	require.NoError(t, db.Where("name = ?", "laptops").First(&laptops).Error)
	require.NotNil(t, laptops.ParentID)

	var parent models.Category
	require.NoError(t, db.First(&parent, *laptops.ParentID).Error)
	assert.Equal(t, "electronics", parent.Name)
	assert.Nil(t, parent.ParentID)
}

func TestSeedUsersAssignsRoles(t *testing.T) {
	db := setupSeederDB(t)
	SeedPermissions(db)
	SeedUsers(db)

	var admin models.User
	require.NoError(t, db.Preload("Roles").Where("email = ?", "admin@example.com").First(&admin).Error)
	require.Len(t, admin.Roles, 1)
	assert.Equal(t, "admin", admin.Roles[0].Name)

	var credential models.Password
	require.NoError(t, db.Where("user_id = ?", admin.ID).First(&credential).Error)
	assert.NotEmpty(t, credential.Hash)

	// rerun leaves existing users alone
	SeedUsers(db)
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
