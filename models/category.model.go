package models

// Attribute input types.
const (
	InputTypeNumber = "number"
	InputTypeSelect = "select"
	InputTypeText   = "text"
)

// Category is a node in a two-level tree: top-level categories have no
// parent, children reference exactly one parent. Listings attach to child
// categories.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;unique" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
}

// Attribute describes a filterable/enterable listing property (e.g. RAM,
// color). Independent of any single category; relevance is declared via
// CategoryAttribute.
type Attribute struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Slug      string `gorm:"size:100;not null;unique" json:"slug"`
	InputType string `gorm:"size:20;not null" json:"input_type"` // number, select, text
	Unit      string `gorm:"size:20" json:"unit"`

	Values []AttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE" json:"values,omitempty"`
}

// AttributeValue is an allowed value string for a select-type attribute.
type AttributeValue struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AttributeID uint   `gorm:"index;not null" json:"attribute_id"`
	Value       string `gorm:"size:100;not null" json:"value"`
}

// CategoryAttribute declares which attributes are relevant to which category.
type CategoryAttribute struct {
	CategoryID  uint `gorm:"primaryKey" json:"category_id"`
	AttributeID uint `gorm:"primaryKey" json:"attribute_id"`

	Attribute Attribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE" json:"attribute"`
}
