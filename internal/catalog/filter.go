package catalog

import (
	"sort"

	"github.com/dm-gthb/listly/models"
)

// PageSize is the fixed number of listings per page.
const PageSize = 8

// Condition filter values. ConditionAll is the default and applies no
// constraint.
const ConditionAll = "all"

// Sort keys. Price sorts ascending by Sum, createdAt (the default) sorts
// newest first. Ties keep the input order.
const (
	SortByCreatedAt = "createdAt"
	SortByPrice     = "price"
)

// FilterByCondition keeps listings whose condition equals the filter.
func FilterByCondition(listings []models.Listing, condition string) []models.Listing {
	if condition == "" || condition == ConditionAll {
		return listings
	}
	filtered := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Condition == condition {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// FilterByAttributes keeps a listing only if, for every supplied filter, the
// listing's stored value for that attribute equals the filter value exactly.
// Attributes without a supplied filter are not constrained. Listings must
// have their Attributes loaded.
func FilterByAttributes(listings []models.Listing, filters map[uint]string) []models.Listing {
	if len(filters) == 0 {
		return listings
	}
	filtered := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		values := make(map[uint]string, len(l.Attributes))
		for _, a := range l.Attributes {
			values[a.AttributeID] = a.Value
		}
		match := true
		for attributeID, want := range filters {
			if values[attributeID] != want {
				match = false
				break
			}
		}
		if match {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// SortListings orders the set in place by the given sort key.
func SortListings(listings []models.Listing, sortBy string) {
	switch sortBy {
	case SortByPrice:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Sum < listings[j].Sum
		})
	default:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}

// Paginate slices out the requested 1-based page. Pages beyond the available
// range yield an empty slice.
func Paginate(listings []models.Listing, page int) []models.Listing {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize
	if offset >= len(listings) {
		return []models.Listing{}
	}
	end := offset + PageSize
	if end > len(listings) {
		end = len(listings)
	}
	return listings[offset:end]
}
