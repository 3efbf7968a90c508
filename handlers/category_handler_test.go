package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dm-gthb/listly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategories(t *testing.T) {
	env := setupTestEnv(t)
	env.createLaptopsCategory(t)

	res, err := env.App.Test(httptest.NewRequest("GET", "/api/categories", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Data []models.Category `json:"data"`
	}
	decodeBody(t, res, &body)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "electronics", body.Data[0].Name)
	assert.Nil(t, body.Data[0].ParentID)
	assert.Equal(t, "laptops", body.Data[1].Name)
	require.NotNil(t, body.Data[1].ParentID)
	assert.Equal(t, body.Data[0].ID, *body.Data[1].ParentID)
}

func TestGetCategoryAttributes(t *testing.T) {
	env := setupTestEnv(t)
	category, ram, color := env.createLaptopsCategory(t)

	res, err := env.App.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/categories/%d/attributes", category.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Data []models.CategoryAttribute `json:"data"`
	}
	decodeBody(t, res, &body)
	require.Len(t, body.Data, 2)
	assert.Equal(t, ram.ID, body.Data[0].AttributeID)
	assert.Equal(t, "ram", body.Data[0].Attribute.Slug)
	assert.Equal(t, color.ID, body.Data[1].AttributeID)
	// Select attributes carry their allowed values for form rendering.
	require.Len(t, body.Data[1].Attribute.Values, 2)
}

func TestGetCategoryAttributesNotFound(t *testing.T) {
	env := setupTestEnv(t)

	res, err := env.App.Test(httptest.NewRequest("GET", "/api/categories/999/attributes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
