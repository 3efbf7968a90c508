package models

// Permission actions, entities and access scopes. An authorization check
// tests membership of the exact (action, entity, access) triple in the
// requesting user's flattened permission set.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"

	EntityUser    = "user"
	EntityListing = "listing"

	AccessOwn = "own"
	AccessAny = "any"
)

type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null;size:50" json:"name"` // admin, user, demo
	Description string `json:"description"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles;" json:"-"`
}

type Permission struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Action string `gorm:"not null;size:20;uniqueIndex:idx_permission_triple" json:"action"`
	Entity string `gorm:"not null;size:20;uniqueIndex:idx_permission_triple" json:"entity"`
	Access string `gorm:"not null;size:20;uniqueIndex:idx_permission_triple" json:"access"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"-"`
}
