package catalog

import (
	"strconv"
	"strings"

	"github.com/dm-gthb/listly/models"
)

const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
	MaxImages         = 5
	MaxImageBytes     = 700 * 1024
)

// ListingInput carries raw form values of a create/update submission.
// Attributes holds the dynamic attr_<id> fields.
type ListingInput struct {
	Title       string
	Description string
	Sum         string
	CategoryID  string
	Condition   string
	Attributes  map[string]string
}

// ParsedListing is a validated submission with values coerced to their
// storage types.
type ParsedListing struct {
	Title       string
	Description string
	Sum         int
	CategoryID  uint
	Condition   string
	Attributes  map[uint]string
}

// ValidateListing checks core fields against their ranges and every dynamic
// attribute against its derived rule. One value per category attribute is
// required; attribute keys outside the rule set are rejected so a listing
// cannot carry values for attributes its category does not declare.
func ValidateListing(input ListingInput, rules map[string]FieldRule) (ParsedListing, []models.ErrorDetail) {
	var errs []models.ErrorDetail
	parsed := ParsedListing{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Condition:   input.Condition,
		Attributes:  make(map[uint]string, len(rules)),
	}

	if parsed.Title == "" || len(parsed.Title) > TitleMaxLen {
		errs = append(errs, models.ErrorDetail{Field: "title", Message: "must be 1-100 characters"})
	}
	if parsed.Description == "" || len(parsed.Description) > DescriptionMaxLen {
		errs = append(errs, models.ErrorDetail{Field: "description", Message: "must be 1-500 characters"})
	}

	sum, err := strconv.Atoi(strings.TrimSpace(input.Sum))
	if err != nil || sum < 0 {
		errs = append(errs, models.ErrorDetail{Field: "sum", Message: "must be a number >= 0"})
	} else {
		parsed.Sum = sum
	}

	categoryID, err := strconv.ParseUint(strings.TrimSpace(input.CategoryID), 10, 32)
	if err != nil || categoryID < 1 {
		errs = append(errs, models.ErrorDetail{Field: "categoryId", Message: "must be a positive category id"})
	} else {
		parsed.CategoryID = uint(categoryID)
	}

	if parsed.Condition != models.ConditionNew && parsed.Condition != models.ConditionUsed {
		errs = append(errs, models.ErrorDetail{Field: "condition", Message: "must be new or used"})
	}

	for key, rule := range rules {
		value, ok := input.Attributes[key]
		if !ok {
			errs = append(errs, models.ErrorDetail{Field: key, Message: "required"})
			continue
		}
		if err := rule.Validate(value); err != nil {
			errs = append(errs, models.ErrorDetail{Field: key, Message: err.Error()})
			continue
		}
		parsed.Attributes[AttributeIDFromKey(key)] = value
	}

	// A nil rule set means the category itself was rejected; per-attribute
	// errors would only be noise then.
	if rules != nil {
		for key := range input.Attributes {
			if _, ok := rules[key]; !ok {
				errs = append(errs, models.ErrorDetail{Field: key, Message: "unknown attribute for category"})
			}
		}
	}

	if len(errs) > 0 {
		return ParsedListing{}, errs
	}
	return parsed, nil
}
