// Package catalog holds the listing domain logic: resolving which attributes
// apply to a category, deriving validation rules from them, and
// filtering/sorting/paginating listings. Everything except the resolver is a
// pure function so it can be tested without a database.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dm-gthb/listly/models"

	"gorm.io/gorm"
)

// FieldKeyPrefix namespaces dynamic attribute fields so they cannot collide
// with core listing fields (title, description, sum, categoryId, condition).
const FieldKeyPrefix = "attr_"

// FieldKey returns the namespaced form/query key for an attribute.
func FieldKey(attributeID uint) string {
	return fmt.Sprintf("%s%d", FieldKeyPrefix, attributeID)
}

// AttributeIDFromKey reverses FieldKey. Returns 0 for keys that are not
// attribute fields.
func AttributeIDFromKey(key string) uint {
	raw, ok := strings.CutPrefix(key, FieldKeyPrefix)
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// ResolveCategoryAttributes returns the ordered attribute set applicable to
// a category, with allowed values preloaded for select attributes. An
// unknown category yields an empty set, not an error: callers validate
// category existence separately.
func ResolveCategoryAttributes(db *gorm.DB, categoryID uint) ([]models.CategoryAttribute, error) {
	var attrs []models.CategoryAttribute
	err := db.Where("category_id = ?", categoryID).
		Preload("Attribute.Values").
		Order("attribute_id").
		Find(&attrs).Error
	return attrs, err
}

// FieldRule validates a single submitted attribute value. All rules treat
// the value as required.
type FieldRule interface {
	Validate(value string) error
}

// NumberRule coerces the value to a number.
type NumberRule struct{}

func (NumberRule) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("required")
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

// EnumRule accepts only one of the attribute's known value strings.
type EnumRule struct {
	Allowed []string
}

func (r EnumRule) Validate(value string) error {
	if value == "" {
		return fmt.Errorf("required")
	}
	for _, allowed := range r.Allowed {
		if value == allowed {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(r.Allowed, ", "))
}

// StringRule accepts any non-empty string.
type StringRule struct{}

func (StringRule) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// BuildFieldRules derives a validation rule per category attribute, keyed by
// the namespaced field key.
func BuildFieldRules(attrs []models.CategoryAttribute) map[string]FieldRule {
	rules := make(map[string]FieldRule, len(attrs))
	for _, ca := range attrs {
		key := FieldKey(ca.AttributeID)
		switch ca.Attribute.InputType {
		case models.InputTypeNumber:
			rules[key] = NumberRule{}
		case models.InputTypeSelect:
			allowed := make([]string, 0, len(ca.Attribute.Values))
			for _, v := range ca.Attribute.Values {
				allowed = append(allowed, v.Value)
			}
			rules[key] = EnumRule{Allowed: allowed}
		default:
			rules[key] = StringRule{}
		}
	}
	return rules
}
