// Package authz decides whether a user may perform an (action, entity,
// access-scope) operation. Permissions are resolved from the user's roles on
// every check; nothing is cached across requests.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dm-gthb/listly/models"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated means no session user was present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the user lacks the required permission.
	ErrForbidden = errors.New("forbidden")
)

// Descriptor is a parsed permission string: "action:entity" or
// "action:entity:accessA,accessB". An empty Access list means any access
// scope satisfies the check.
type Descriptor struct {
	Action string
	Entity string
	Access []string
}

func (d Descriptor) String() string {
	if len(d.Access) == 0 {
		return d.Action + ":" + d.Entity
	}
	return d.Action + ":" + d.Entity + ":" + strings.Join(d.Access, ",")
}

// ParsePermission splits a permission descriptor string.
func ParsePermission(permission string) (Descriptor, error) {
	parts := strings.Split(permission, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Descriptor{}, fmt.Errorf("invalid permission descriptor: %q", permission)
	}
	d := Descriptor{Action: parts[0], Entity: parts[1]}
	if len(parts) == 3 && parts[2] != "" {
		d.Access = strings.Split(parts[2], ",")
	}
	return d, nil
}

// HasPermission scans the flattened permission set for an entry whose action
// and entity match exactly and whose access is in the requested access set
// (or any access when the descriptor carries no constraint).
func HasPermission(permissions []models.Permission, d Descriptor) bool {
	for _, p := range permissions {
		if p.Action != d.Action || p.Entity != d.Entity {
			continue
		}
		if len(d.Access) == 0 {
			return true
		}
		for _, access := range d.Access {
			if p.Access == access {
				return true
			}
		}
	}
	return false
}

// ResolvePermissions loads the union of the user's role permissions.
func ResolvePermissions(db *gorm.DB, userID uint) ([]models.Permission, error) {
	var user models.User
	err := db.Preload("Roles.Permissions").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	var permissions []models.Permission
	for _, role := range user.Roles {
		permissions = append(permissions, role.Permissions...)
	}
	return permissions, nil
}

// Check verifies that the user holds the permission named by the descriptor
// string. Returns ErrUnauthenticated when userID is 0 or unknown, and
// ErrForbidden when the resolved permission set lacks the permission.
func Check(db *gorm.DB, userID uint, permission string) error {
	if userID == 0 {
		return ErrUnauthenticated
	}

	d, err := ParsePermission(permission)
	if err != nil {
		return err
	}

	permissions, err := ResolvePermissions(db, userID)
	if err != nil {
		return err
	}

	if !HasPermission(permissions, d) {
		return ErrForbidden
	}
	return nil
}
