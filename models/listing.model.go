package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Listing conditions.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// ImageList stores an ordered list of opaque storage keys as a JSON text
// column, so the same model works on postgres and sqlite.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *ImageList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = ImageList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("images: unsupported column type")
	}
}

type Listing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500;not null" json:"description"`
	Sum         int       `gorm:"not null" json:"sum"`
	Condition   string    `gorm:"size:20;not null" json:"condition"` // new, used
	Images      ImageList `gorm:"type:text;not null" json:"images"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner      User               `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Categories []ListingCategory  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Attributes []ListingAttribute `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
	Comments   []Comment          `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// ListingCategory links a listing to a category. The schema allows many
// rows per listing; the application maintains exactly one.
type ListingCategory struct {
	ListingID  uint `gorm:"primaryKey" json:"listing_id"`
	CategoryID uint `gorm:"primaryKey" json:"category_id"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// ListingAttribute is the realized value of an attribute for a listing.
// Values are stored as strings; numeric attributes are coerced at the
// validation boundary.
type ListingAttribute struct {
	ListingID   uint   `gorm:"primaryKey" json:"listing_id"`
	AttributeID uint   `gorm:"primaryKey" json:"attribute_id"`
	Value       string `gorm:"size:100;not null" json:"value"`

	Attribute Attribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}
