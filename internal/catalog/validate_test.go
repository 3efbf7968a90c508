package catalog

import (
	"strings"
	"testing"

	"github.com/dm-gthb/listly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ListingInput {
	return ListingInput{
		Title:       "ThinkPad X1",
		Description: "Great condition",
		Sum:         "500",
		CategoryID:  "5",
		Condition:   models.ConditionNew,
		Attributes:  map[string]string{"attr_3": "16"},
	}
}

func ramRules() map[string]FieldRule {
	return map[string]FieldRule{"attr_3": NumberRule{}}
}

func TestValidateListingOK(t *testing.T) {
	parsed, errs := ValidateListing(validInput(), ramRules())
	require.Empty(t, errs)
	assert.Equal(t, "ThinkPad X1", parsed.Title)
	assert.Equal(t, 500, parsed.Sum)
	assert.Equal(t, uint(5), parsed.CategoryID)
	assert.Equal(t, map[uint]string{3: "16"}, parsed.Attributes)
}

func TestValidateListingFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ListingInput)
		field  string
	}{
		{"empty title", func(in *ListingInput) { in.Title = "" }, "title"},
		{"title too long", func(in *ListingInput) { in.Title = strings.Repeat("a", 101) }, "title"},
		{"empty description", func(in *ListingInput) { in.Description = "  " }, "description"},
		{"description too long", func(in *ListingInput) { in.Description = strings.Repeat("a", 501) }, "description"},
		{"negative sum", func(in *ListingInput) { in.Sum = "-1" }, "sum"},
		{"sum not a number", func(in *ListingInput) { in.Sum = "abc" }, "sum"},
		{"zero category", func(in *ListingInput) { in.CategoryID = "0" }, "categoryId"},
		{"bad condition", func(in *ListingInput) { in.Condition = "refurbished" }, "condition"},
		{"missing attribute", func(in *ListingInput) { delete(in.Attributes, "attr_3") }, "attr_3"},
		{"bad attribute value", func(in *ListingInput) { in.Attributes["attr_3"] = "lots" }, "attr_3"},
		{"unknown attribute", func(in *ListingInput) { in.Attributes["attr_99"] = "x" }, "attr_99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, errs := ValidateListing(input, ramRules())
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected an error on field %s, got %v", tt.field, errs)
		})
	}
}

func TestValidateListingBoundaries(t *testing.T) {
	input := validInput()
	input.Title = strings.Repeat("a", 100)
	input.Description = strings.Repeat("b", 500)
	input.Sum = "0"

	_, errs := ValidateListing(input, ramRules())
	assert.Empty(t, errs)
}

func TestValidateListingCollectsAllErrors(t *testing.T) {
	input := ListingInput{Attributes: map[string]string{}}
	_, errs := ValidateListing(input, ramRules())
	// title, description, sum, categoryId, condition, attr_3
	assert.Len(t, errs, 6)
}
