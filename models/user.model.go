package models

import (
	"time"
)

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"unique;not null;size:100" json:"email"`
	Name      string `gorm:"not null;size:100" json:"name"`
	AvatarURL string `json:"avatar_url"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Password keeps credential hashes out of the users table.
type Password struct {
	UserID uint   `gorm:"primaryKey" json:"-"`
	Hash   string `gorm:"not null" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
