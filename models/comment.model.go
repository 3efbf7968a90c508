package models

import (
	"time"
)

// Comment is free-text feedback on a listing.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Text      string `gorm:"type:text;not null" json:"text"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	ListingID uint   `gorm:"index;not null" json:"listing_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
